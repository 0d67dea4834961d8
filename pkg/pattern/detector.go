package pattern

import (
	"fmt"
)

// Detector is a caller supplied pattern rule. Implementations must be
// stateless and safe for concurrent use.
type Detector interface {
	ID() PatternID
	// MinBars is the window the rule needs, inclusive of the current bar
	MinBars() int
	// Detect evaluates bars[index]; ctx describes the bars before it.
	// Only bars[index-MinBars()+1 : index+1] are guaranteed to be present,
	// and StartIndex is read relative to the same bars.
	Detect(bars []Bar, index int, ctx *MarketContext) (Match, bool)
}

// DetectorFunc adapts a plain function to the Detect method
type DetectorFunc func(bars []Bar, index int, ctx *MarketContext) (Match, bool)

type funcDetector struct {
	id      PatternID
	minBars int
	fn      DetectorFunc
}

// NewDetector wraps fn as a Detector
func NewDetector(id PatternID, minBars int, fn DetectorFunc) Detector {
	return &funcDetector{id: id, minBars: minBars, fn: fn}
}

func (d *funcDetector) ID() PatternID { return d.id }
func (d *funcDetector) MinBars() int  { return d.minBars }
func (d *funcDetector) Detect(bars []Bar, index int, ctx *MarketContext) (Match, bool) {
	return d.fn(bars, index, ctx)
}

// Family groups built-ins by the number of bars in their shape
type Family string

const (
	FamilySingle   Family = "single"
	FamilyTwo      Family = "two"
	FamilyThree    Family = "three"
	FamilyExtended Family = "extended"
)

// Kind enumerates the built-in detectors
type Kind uint8

const (
	kindInvalid Kind = iota

	Doji
	DragonflyDoji
	GravestoneDoji
	LongLeggedDoji
	Hammer
	HangingMan
	InvertedHammer
	ShootingStar
	Marubozu
	SpinningTop
	LongLine
	ShortLine

	Engulfing
	Harami
	HaramiCross
	Piercing
	DarkCloudCover
	DojiStar
	TweezerTop
	TweezerBottom

	MorningStar
	EveningStar
	ThreeWhiteSoldiers
	ThreeBlackCrows
	ThreeInside
	ThreeOutside

	RisingWindow
	FallingWindow
	BeltHold
	Kicking

	kindCount
)

type kindInfo struct {
	id      PatternID
	family  Family
	minBars int
	span    int // bars covered by a match
	// typical is meaningful only when bidirectional is false
	typical       Direction
	bidirectional bool
	params        []string
	defaults      map[string]float64
}

var (
	dojiParams    = []string{ParamDojiFactor, ParamColdStartBody}
	bodyParams    = []string{ParamBodyShortFactor, ParamBodyLongFactor}
	hammerParams  = []string{ParamBodyShortFactor, ParamShadowVeryLongFactor, ParamShadowVeryShortFactor, ParamNearFactor, ParamMinLookback}
	starParams    = []string{ParamBodyShortFactor, ParamBodyLongFactor, ParamPenetration}
	tweezerParams = []string{ParamBodyShortFactor, ParamEqualFactor, ParamMinLookback}
)

func join(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

var kindTable = [kindCount]kindInfo{
	Doji:           {id: "DOJI", family: FamilySingle, minBars: 1, span: 1, typical: Neutral, params: dojiParams},
	DragonflyDoji:  {id: "DRAGONFLY_DOJI", family: FamilySingle, minBars: 1, span: 1, typical: Bullish, params: join(dojiParams, []string{ParamShadowVeryShortFactor})},
	GravestoneDoji: {id: "GRAVESTONE_DOJI", family: FamilySingle, minBars: 1, span: 1, typical: Bearish, params: join(dojiParams, []string{ParamShadowVeryShortFactor})},
	LongLeggedDoji: {id: "LONG_LEGGED_DOJI", family: FamilySingle, minBars: 1, span: 1, typical: Neutral, params: join(dojiParams, []string{ParamBodyLongFactor})},
	Hammer:         {id: "HAMMER", family: FamilySingle, minBars: 2, span: 1, typical: Bullish, params: hammerParams},
	HangingMan:     {id: "HANGING_MAN", family: FamilySingle, minBars: 2, span: 1, typical: Bearish, params: hammerParams},
	InvertedHammer: {id: "INVERTED_HAMMER", family: FamilySingle, minBars: 2, span: 1, typical: Bullish, params: []string{ParamBodyShortFactor, ParamShadowVeryLongFactor, ParamShadowVeryShortFactor}},
	ShootingStar:   {id: "SHOOTING_STAR", family: FamilySingle, minBars: 2, span: 1, typical: Bearish, params: []string{ParamBodyShortFactor, ParamShadowVeryLongFactor, ParamShadowVeryShortFactor}},
	Marubozu:       {id: "MARUBOZU", family: FamilySingle, minBars: 1, span: 1, bidirectional: true, params: []string{ParamBodyLongFactor, ParamShadowVeryShortFactor}},
	SpinningTop:    {id: "SPINNING_TOP", family: FamilySingle, minBars: 1, span: 1, typical: Neutral, params: []string{ParamBodyShortFactor}},
	LongLine:       {id: "LONG_LINE", family: FamilySingle, minBars: 1, span: 1, bidirectional: true, params: []string{ParamBodyLongFactor}},
	ShortLine:      {id: "SHORT_LINE", family: FamilySingle, minBars: 1, span: 1, bidirectional: true, params: []string{ParamBodyShortFactor}},

	Engulfing:      {id: "ENGULFING", family: FamilyTwo, minBars: 2, span: 2, bidirectional: true},
	Harami:         {id: "HARAMI", family: FamilyTwo, minBars: 2, span: 2, bidirectional: true, params: bodyParams},
	HaramiCross:    {id: "HARAMI_CROSS", family: FamilyTwo, minBars: 2, span: 2, bidirectional: true, params: join(dojiParams, []string{ParamBodyLongFactor})},
	Piercing:       {id: "PIERCING", family: FamilyTwo, minBars: 2, span: 2, typical: Bullish, params: join(bodyParams, []string{ParamPenetration})},
	DarkCloudCover: {id: "DARK_CLOUD_COVER", family: FamilyTwo, minBars: 2, span: 2, typical: Bearish, params: join(bodyParams, []string{ParamPenetration})},
	DojiStar:       {id: "DOJI_STAR", family: FamilyTwo, minBars: 2, span: 2, bidirectional: true, params: join(dojiParams, []string{ParamBodyLongFactor})},
	TweezerTop:     {id: "TWEEZER_TOP", family: FamilyTwo, minBars: 2, span: 2, typical: Bearish, params: tweezerParams},
	TweezerBottom:  {id: "TWEEZER_BOTTOM", family: FamilyTwo, minBars: 2, span: 2, typical: Bullish, params: tweezerParams},

	MorningStar:        {id: "MORNING_STAR", family: FamilyThree, minBars: 3, span: 3, typical: Bullish, params: starParams, defaults: map[string]float64{ParamPenetration: 0.3}},
	EveningStar:        {id: "EVENING_STAR", family: FamilyThree, minBars: 3, span: 3, typical: Bearish, params: starParams, defaults: map[string]float64{ParamPenetration: 0.3}},
	ThreeWhiteSoldiers: {id: "THREE_WHITE_SOLDIERS", family: FamilyThree, minBars: 3, span: 3, typical: Bullish, params: []string{ParamBodyShortFactor, ParamShadowVeryShortFactor}},
	ThreeBlackCrows:    {id: "THREE_BLACK_CROWS", family: FamilyThree, minBars: 3, span: 3, typical: Bearish, params: []string{ParamBodyShortFactor, ParamShadowVeryShortFactor}},
	ThreeInside:        {id: "THREE_INSIDE", family: FamilyThree, minBars: 3, span: 3, bidirectional: true, params: bodyParams},
	ThreeOutside:       {id: "THREE_OUTSIDE", family: FamilyThree, minBars: 3, span: 3, bidirectional: true},

	RisingWindow:  {id: "RISING_WINDOW", family: FamilyExtended, minBars: 2, span: 2, typical: Bullish, params: []string{ParamFarFactor}},
	FallingWindow: {id: "FALLING_WINDOW", family: FamilyExtended, minBars: 2, span: 2, typical: Bearish, params: []string{ParamFarFactor}},
	BeltHold:      {id: "BELT_HOLD", family: FamilyExtended, minBars: 1, span: 1, bidirectional: true, params: []string{ParamBodyLongFactor, ParamShadowVeryShortFactor}},
	Kicking:       {id: "KICKING", family: FamilyExtended, minBars: 2, span: 2, bidirectional: true, params: []string{ParamBodyLongFactor, ParamShadowVeryShortFactor}},
}

func (k Kind) valid() bool { return k > kindInvalid && k < kindCount }

// ID returns the pattern id the built-in registers under
func (k Kind) ID() PatternID {
	if !k.valid() {
		return ""
	}
	return kindTable[k].id
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return string(kindTable[k].id)
}

// MinBars returns the history the built-in needs, inclusive of the current bar
func (k Kind) MinBars() int {
	if !k.valid() {
		return 0
	}
	return kindTable[k].minBars
}

// Family returns the preset family of the built-in
func (k Kind) Family() Family {
	if !k.valid() {
		return ""
	}
	return kindTable[k].family
}

// TypicalDirection returns the usual bias of the pattern.
// ok is false for patterns whose direction depends on bar colors.
func (k Kind) TypicalDirection() (dir Direction, ok bool) {
	if !k.valid() {
		return Neutral, false
	}
	info := kindTable[k]
	return info.typical, !info.bidirectional
}

// Params lists the metadata of every parameter the built-in reads,
// with per-kind defaults applied.
func (k Kind) Params() []ParamMeta {
	if !k.valid() {
		return nil
	}
	info := kindTable[k]
	out := make([]ParamMeta, 0, len(info.params))
	for _, name := range info.params {
		meta := paramTable[name]
		if v, ok := info.defaults[name]; ok {
			meta.Default = v
		}
		out = append(out, meta)
	}
	return out
}

func (k Kind) accepts(name string) bool {
	for _, p := range kindTable[k].params {
		if p == name {
			return true
		}
	}
	return false
}

// LookupKind finds a built-in by its pattern id
func LookupKind(id PatternID) (Kind, bool) {
	for k := kindInvalid + 1; k < kindCount; k++ {
		if kindTable[k].id == id {
			return k, true
		}
	}
	return kindInvalid, false
}

// Catalog lists every built-in in declaration order
func Catalog() []Kind {
	out := make([]Kind, 0, int(kindCount)-1)
	for k := kindInvalid + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Builtin is a configured built-in detector. The engine dispatches on its
// kind with a switch; no interface call is involved.
type Builtin struct {
	kind   Kind
	params Params
}

// NewBuiltin resolves the defaults of kind and applies settings.
// Unknown kinds, parameters the kind does not read, and out of domain values
// fail with *ValidationError.
func NewBuiltin(kind Kind, settings ...Setting) (Builtin, error) {
	if !kind.valid() {
		return Builtin{}, &ValidationError{Field: "kind", Value: float64(kind), Reason: "unknown built-in"}
	}
	params := DefaultParams()
	for name, v := range kindTable[kind].defaults {
		params.set(name, v)
	}
	for _, s := range settings {
		meta, ok := paramTable[s.Name]
		if !ok || !kind.accepts(s.Name) {
			return Builtin{}, &ValidationError{
				Field:  string(kind.ID()) + "." + s.Name,
				Value:  s.Value,
				Reason: "unknown parameter",
			}
		}
		if err := meta.Validate(s.Value); err != nil {
			return Builtin{}, &ValidationError{
				Field:  string(kind.ID()) + "." + s.Name,
				Value:  s.Value,
				Reason: err.(*ValidationError).Reason,
			}
		}
		params.set(s.Name, s.Value)
	}
	return Builtin{kind: kind, params: params}, nil
}

// Kind returns the built-in kind
func (b Builtin) Kind() Kind { return b.kind }

// ID returns the pattern id
func (b Builtin) ID() PatternID { return b.kind.ID() }

// MinBars returns the required history
func (b Builtin) MinBars() int { return b.kind.MinBars() }

// Params returns the resolved thresholds
func (b Builtin) Params() Params { return b.params }

// DetectBuiltin evaluates one built-in at bars[index].
// Insufficient history yields no match.
func DetectBuiltin[B Bar](b *Builtin, bars []B, index int, ctx *MarketContext) (Match, bool) {
	info := &kindTable[b.kind]
	if index < 0 || index >= len(bars) || index+1 < info.minBars {
		return Match{}, false
	}

	t := thresholds{p: &b.params, ctx: ctx}
	var (
		dir      Direction
		strength float64
		ok       bool
	)
	switch b.kind {
	case Doji:
		dir, strength, ok = detectDoji(t, bars, index)
	case DragonflyDoji:
		dir, strength, ok = detectDragonfly(t, bars, index)
	case GravestoneDoji:
		dir, strength, ok = detectGravestone(t, bars, index)
	case LongLeggedDoji:
		dir, strength, ok = detectLongLegged(t, bars, index)
	case Hammer:
		dir, strength, ok = detectHammer(t, bars, index)
	case HangingMan:
		dir, strength, ok = detectHangingMan(t, bars, index)
	case InvertedHammer:
		dir, strength, ok = detectInvertedHammer(t, bars, index)
	case ShootingStar:
		dir, strength, ok = detectShootingStar(t, bars, index)
	case Marubozu:
		dir, strength, ok = detectMarubozu(t, bars, index)
	case SpinningTop:
		dir, strength, ok = detectSpinningTop(t, bars, index)
	case LongLine:
		dir, strength, ok = detectLongLine(t, bars, index)
	case ShortLine:
		dir, strength, ok = detectShortLine(t, bars, index)
	case Engulfing:
		dir, strength, ok = detectEngulfing(t, bars, index)
	case Harami:
		dir, strength, ok = detectHarami(t, bars, index)
	case HaramiCross:
		dir, strength, ok = detectHaramiCross(t, bars, index)
	case Piercing:
		dir, strength, ok = detectPiercing(t, bars, index)
	case DarkCloudCover:
		dir, strength, ok = detectDarkCloudCover(t, bars, index)
	case DojiStar:
		dir, strength, ok = detectDojiStar(t, bars, index)
	case TweezerTop:
		dir, strength, ok = detectTweezerTop(t, bars, index)
	case TweezerBottom:
		dir, strength, ok = detectTweezerBottom(t, bars, index)
	case MorningStar:
		dir, strength, ok = detectMorningStar(t, bars, index)
	case EveningStar:
		dir, strength, ok = detectEveningStar(t, bars, index)
	case ThreeWhiteSoldiers:
		dir, strength, ok = detectThreeWhiteSoldiers(t, bars, index)
	case ThreeBlackCrows:
		dir, strength, ok = detectThreeBlackCrows(t, bars, index)
	case ThreeInside:
		dir, strength, ok = detectThreeInside(t, bars, index)
	case ThreeOutside:
		dir, strength, ok = detectThreeOutside(t, bars, index)
	case RisingWindow:
		dir, strength, ok = detectRisingWindow(t, bars, index)
	case FallingWindow:
		dir, strength, ok = detectFallingWindow(t, bars, index)
	case BeltHold:
		dir, strength, ok = detectBeltHold(t, bars, index)
	case Kicking:
		dir, strength, ok = detectKicking(t, bars, index)
	}
	if !ok {
		return Match{}, false
	}
	return Match{
		PatternID:  info.id,
		Direction:  dir,
		Strength:   clampStrength(strength),
		StartIndex: index - info.span + 1,
		EndIndex:   index,
	}, true
}
