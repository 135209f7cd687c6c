package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/udisondev/holdstate/internal/challenge"
	"github.com/udisondev/holdstate/internal/model"
)

// AssertHolds проверяет, что запись челленджей профиля в точности равна want.
func AssertHolds(t testing.TB, want Holds, p *model.PlayerProfile) {
	t.Helper()

	expected := challenge.New()
	for holdID, names := range want {
		expected.Add(holdID, names...)
	}
	if !expected.Equal(p.Challenges()) {
		t.Fatalf("challenges of %q mismatch:\nexpected:\n%s\nactual:\n%s",
			p.Name(), DumpChallenges(expected), DumpChallenges(p.Challenges()))
	}
}

// DumpChallenges форматирует запись челленджей для сообщений об ошибках.
func DumpChallenges(c *challenge.Challenges) string {
	var b strings.Builder
	for _, holdID := range c.HoldIDs() {
		fmt.Fprintf(&b, "  %d: [%s]\n", holdID, strings.Join(c.Get(holdID), ", "))
	}
	if b.Len() == 0 {
		return "  (empty)\n"
	}
	return b.String()
}
