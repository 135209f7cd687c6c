package scriptvars

import (
	"os"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestMain(m *testing.M) {
	Init()
	os.Exit(m.Run())
}

func TestPredefined_WireValues(t *testing.T) {
	// Значения хранятся в сохранениях — проверяем, что никто их не сдвинул
	tests := []struct {
		id   Predefined
		want int32
	}{
		{NoVar, 0},
		{MonsterWeapon, -1},
		{PlayerX, -4},
		{PlayerY, -5},
		{PlayerO, -6},
		{MonsterX, -7},
		{MonsterO, -9},
		{ScriptX, -12},
		{ScriptF, -16},
		{OverheadImageY, -20},
		{LevelName, -21},
		{ThreatClock, -22},
		{PlayerLightType, -24},
		{ReturnX, -25},
		{ReturnY, -26},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, int32(tc.id), "%s", tc.id)
	}
	assert.Equal(t, 26, PredefinedVarCount)
	assert.Equal(t, ReturnY, FirstPredefinedVar)
}

func TestPredefined_RoundTrip(t *testing.T) {
	ids := All()
	require.Len(t, ids, 22)

	for _, id := range ids {
		name := VarName(id)
		assert.NotEmpty(t, name)
		assert.Equal(t, id, ParsePredefinedVar(name), "round trip of %s", name)
		assert.Equal(t, id, ParsePredefinedVarW(VarNameW(id)))
	}
}

func TestPredefined_RetiredSlotsInvalid(t *testing.T) {
	for _, id := range []Predefined{NoVar, -2, -3, -10, -11, -27, 1} {
		assert.False(t, id.Valid(), "%d", int32(id))
	}
	assert.Panics(t, func() { VarName(-2) })
	assert.Panics(t, func() { VarName(NoVar) })
}

func TestParsePredefinedVar_Unmatched(t *testing.T) {
	assert.Equal(t, NoVar, ParsePredefinedVar(""))
	assert.Equal(t, NoVar, ParsePredefinedVar("_x"), "matching is case-sensitive")
	assert.Equal(t, NoVar, ParsePredefinedVar("_X "))
	assert.Equal(t, NoVar, ParsePredefinedVar("MyCounter"))
}

func TestVarNameW(t *testing.T) {
	assert.Equal(t, utf16.Encode([]rune("_LevelName")), VarNameW(LevelName))
}

func TestIsStringVar(t *testing.T) {
	for _, id := range All() {
		assert.Equal(t, id == LevelName, IsStringVar(id), "%s", id)
	}
}

func TestInit_Idempotent(t *testing.T) {
	Init()
	Init()
	assert.Equal(t, PlayerX, ParsePredefinedVar("_X"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Player X", DisplayName(PlayerX, language.English))
	assert.Equal(t, "Level name", DisplayName(LevelName, language.AmericanEnglish))
	assert.Equal(t, MessageID("MID_VarThreatClock"), MessageIDOf(ThreatClock))
}

func TestIsCharacterLocalVar(t *testing.T) {
	assert.True(t, IsCharacterLocalVar(".count"))
	assert.False(t, IsCharacterLocalVar("count"))
	assert.False(t, IsCharacterLocalVar("."))
	assert.True(t, IsCharacterLocalVarW(utf16.Encode([]rune(".hp"))))

	SetLocalVarRule(PrefixRule("$"))
	t.Cleanup(func() { SetLocalVarRule(nil) })

	assert.True(t, IsCharacterLocalVar("$count"))
	assert.False(t, IsCharacterLocalVar(".count"))
}

func TestParseKey(t *testing.T) {
	k := ParseKey("_LevelName")
	assert.True(t, k.IsPredefined())
	assert.Equal(t, KindText, k.Kind())

	k = ParseKey("_X")
	assert.Equal(t, KindInt, k.Kind())

	k = ParseKey("Gates opened")
	assert.False(t, k.IsPredefined())
	assert.Equal(t, KindNone, k.Kind())
	assert.Equal(t, "Gates opened", k.String())
}
