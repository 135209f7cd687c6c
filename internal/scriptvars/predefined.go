// Package scriptvars implements the scripting variable model used by level scripts:
// the predefined variable registry, the typed variable value, and the fixed
// opcode/comparator semantics applied to it.
//
// All numeric codes in this package (Predefined, Op, Comp) are stored in saved
// scripts and player data. Never renumber or reorder them.
package scriptvars

import (
	"fmt"
	"sync"
	"unicode/utf16"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Predefined identifies a built-in game state variable.
// Zero means "no variable"; every valid identity is negative.
type Predefined int32

const (
	NoVar         Predefined = 0
	MonsterWeapon Predefined = -1
	// -2, -3 retired (sword, monster color)
	PlayerX  Predefined = -4
	PlayerY  Predefined = -5
	PlayerO  Predefined = -6
	MonsterX Predefined = -7
	MonsterY Predefined = -8
	MonsterO Predefined = -9
	// -10, -11 retired (total moves, total time)
	ScriptX         Predefined = -12
	ScriptY         Predefined = -13
	ScriptW         Predefined = -14
	ScriptH         Predefined = -15
	ScriptF         Predefined = -16
	RoomImageX      Predefined = -17
	RoomImageY      Predefined = -18
	OverheadImageX  Predefined = -19
	OverheadImageY  Predefined = -20
	LevelName       Predefined = -21
	ThreatClock     Predefined = -22
	PlayerLight     Predefined = -23
	PlayerLightType Predefined = -24
	ReturnX         Predefined = -25
	ReturnY         Predefined = -26

	// FirstPredefinedVar is the most negative identity. Move it when appending.
	FirstPredefinedVar = ReturnY
	// PredefinedVarCount is the magnitude of FirstPredefinedVar.
	PredefinedVarCount = -int(FirstPredefinedVar)
)

// MessageID is the display-message key of a predefined variable.
type MessageID string

type varInfo struct {
	id      Predefined
	name    string // canonical script identifier
	mid     MessageID
	display string // English display text
	text    bool
}

// predefinedVars lists every valid identity in enumeration order.
var predefinedVars = []varInfo{
	{MonsterWeapon, "_MyWeapon", "MID_VarMonsterWeapon", "Character weapon", false},
	{PlayerX, "_X", "MID_VarX", "Player X", false},
	{PlayerY, "_Y", "MID_VarY", "Player Y", false},
	{PlayerO, "_O", "MID_VarO", "Player orientation", false},
	{MonsterX, "_MyX", "MID_VarMonsterX", "Character X", false},
	{MonsterY, "_MyY", "MID_VarMonsterY", "Character Y", false},
	{MonsterO, "_MyO", "MID_VarMonsterO", "Character orientation", false},
	{ScriptX, "_MyScriptX", "MID_VarMonsterParamX", "Script X", false},
	{ScriptY, "_MyScriptY", "MID_VarMonsterParamY", "Script Y", false},
	{ScriptW, "_MyScriptW", "MID_VarMonsterParamW", "Script width", false},
	{ScriptH, "_MyScriptH", "MID_VarMonsterParamH", "Script height", false},
	{ScriptF, "_MyScriptF", "MID_VarMonsterParamF", "Script flags", false},
	{RoomImageX, "_RoomImageX", "MID_VarRoomImageX", "Room image X", false},
	{RoomImageY, "_RoomImageY", "MID_VarRoomImageY", "Room image Y", false},
	{OverheadImageX, "_OverheadImageX", "MID_VarOverheadImageX", "Overhead image X", false},
	{OverheadImageY, "_OverheadImageY", "MID_VarOverheadImageY", "Overhead image Y", false},
	{LevelName, "_LevelName", "MID_VarLevelName", "Level name", true},
	{ThreatClock, "_ThreatClock", "MID_VarThreatClock", "Threat clock", false},
	{PlayerLight, "_PlayerLight", "MID_VarPlayerLight", "Player light", false},
	{PlayerLightType, "_PlayerLightType", "MID_VarPlayerLightType", "Player light type", false},
	{ReturnX, "_ReturnX", "MID_VarReturnX", "Return X", false},
	{ReturnY, "_ReturnY", "MID_VarReturnY", "Return Y", false},
}

// Registry tables. Written once by Init, read-only afterwards.
var (
	initOnce sync.Once
	byName   map[string]Predefined
	byID     [PredefinedVarCount + 1]*varInfo // indexed by -id
	messages *catalog.Builder
)

// Init builds the registry tables. Safe to call more than once.
// Must run before any other registry function.
func Init() {
	initOnce.Do(func() {
		byName = make(map[string]Predefined, len(predefinedVars))
		messages = catalog.NewBuilder(catalog.Fallback(language.English))
		for i := range predefinedVars {
			info := &predefinedVars[i]
			byName[info.name] = info.id
			byID[-info.id] = info
			if err := messages.SetString(language.English, string(info.mid), info.display); err != nil {
				panic(fmt.Sprintf("scriptvars: registering message %s: %v", info.mid, err))
			}
		}
	})
}

func mustInfo(id Predefined) *varInfo {
	if byName == nil {
		panic("scriptvars: registry used before Init")
	}
	if !id.Valid() {
		panic(fmt.Sprintf("scriptvars: invalid predefined variable %d", int32(id)))
	}
	return byID[-id]
}

// Valid reports whether id is a defined identity (retired slots are not).
func (id Predefined) Valid() bool {
	if id >= NoVar || id < FirstPredefinedVar {
		return false
	}
	for i := range predefinedVars {
		if predefinedVars[i].id == id {
			return true
		}
	}
	return false
}

// String returns the canonical name, or a numeric form for NoVar and invalid ids.
func (id Predefined) String() string {
	if byName != nil && id.Valid() {
		return byID[-id].name
	}
	return fmt.Sprintf("Predefined(%d)", int32(id))
}

// VarName returns the canonical script identifier of id.
// Panics on an invalid identity.
func VarName(id Predefined) string {
	return mustInfo(id).name
}

// VarNameW returns the canonical identifier of id as UTF-16 code units.
func VarNameW(id Predefined) []uint16 {
	return utf16.Encode([]rune(mustInfo(id).name))
}

// ParsePredefinedVar returns the identity whose canonical name is exactly name,
// or NoVar when nothing matches. Matching is case-sensitive.
func ParsePredefinedVar(name string) Predefined {
	if byName == nil {
		panic("scriptvars: registry used before Init")
	}
	return byName[name] // zero value is NoVar
}

// ParsePredefinedVarW is ParsePredefinedVar for UTF-16 names.
func ParsePredefinedVarW(name []uint16) Predefined {
	return ParsePredefinedVar(string(utf16.Decode(name)))
}

// IsStringVar reports whether id holds text rather than an integer.
func IsStringVar(id Predefined) bool {
	return id == LevelName
}

// MessageIDOf returns the display-message key of id.
func MessageIDOf(id Predefined) MessageID {
	return mustInfo(id).mid
}

// DisplayName returns the localized display text of id.
// Languages without a translation fall back to English.
func DisplayName(id Predefined, tag language.Tag) string {
	info := mustInfo(id)
	p := message.NewPrinter(tag, message.Catalog(messages))
	return p.Sprintf(message.Key(string(info.mid), info.display))
}

// All returns every valid identity in enumeration order.
func All() []Predefined {
	ids := make([]Predefined, len(predefinedVars))
	for i := range predefinedVars {
		ids[i] = predefinedVars[i].id
	}
	return ids
}
