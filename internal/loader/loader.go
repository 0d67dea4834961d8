package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"candlescan/pkg/model"
	"candlescan/pkg/scanner"
)

// LoadFile reads one series from a YAML or JSON file. The file holds either a
// model.SeriesFile document or a bare list of candles; the label falls back to
// the file name without extension.
func LoadFile(path string) (scanner.Series[model.Candle], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scanner.Series[model.Candle]{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc model.SeriesFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = decodeJSON(data, &doc)
	case ".yaml", ".yml":
		err = decodeYAML(data, &doc)
	default:
		return scanner.Series[model.Candle]{}, fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return scanner.Series[model.Candle]{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	label := doc.Symbol
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scanner.Series[model.Candle]{Label: label, Bars: doc.Candles}, nil
}

// LoadFiles loads every path, stopping at the first error
func LoadFiles(paths []string) ([]scanner.Series[model.Candle], error) {
	series := make([]scanner.Series[model.Candle], 0, len(paths))
	for _, p := range paths {
		s, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, nil
}

func decodeYAML(data []byte, doc *model.SeriesFile) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	if len(node.Content) == 0 {
		return fmt.Errorf("empty document")
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		return node.Content[0].Decode(&doc.Candles)
	}
	return node.Content[0].Decode(doc)
}

func decodeJSON(data []byte, doc *model.SeriesFile) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty document")
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &doc.Candles)
	}
	return json.Unmarshal(trimmed, doc)
}
