package matchindex

import (
	"fmt"
	"strings"

	"photorestore/internal/asset"
	"photorestore/internal/strategy"
)

const dayLayout = "2006-01-02"

// Key identifies a compound dimensions and day bucket. Either half may be
// absent: assets without dimensions share the HasDims=false slot and undated
// assets share the HasDay=false slot.
type Key struct {
	HasDims bool
	Width   int
	Height  int
	HasDay  bool
	Day     string
}

func (k Key) String() string {
	day := "undated"
	if k.HasDay {
		day = k.Day
	}
	if !k.HasDims {
		return fmt.Sprintf("none@%s", day)
	}
	return fmt.Sprintf("%dx%d@%s", k.Width, k.Height, day)
}

// KeyOf returns the compound key for an asset. It reports false only for a
// nil asset.
func KeyOf(a *asset.Asset) (Key, bool) {
	if a == nil {
		return Key{}, false
	}
	var key Key
	if day, ok := DayOf(a.Timestamp); ok {
		key.HasDay = true
		key.Day = day
	}
	if a.Dimensions != nil {
		key.HasDims = true
		key.Width = a.Dimensions.Width
		key.Height = a.Dimensions.Height
	}
	return key, true
}

// DayOf truncates a timestamp to its calendar day. Unparseable values of at
// least ten characters fall back to their first ten characters.
func DayOf(timestamp string) (string, bool) {
	trimmed := strings.TrimSpace(timestamp)
	if trimmed == "" {
		return "", false
	}
	if ts, ok := strategy.ParseTimestamp(trimmed); ok {
		return ts.Format(dayLayout), true
	}
	if len(trimmed) >= len(dayLayout) {
		return trimmed[:len(dayLayout)], true
	}
	return "", false
}
