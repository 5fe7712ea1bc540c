package logging

import "strings"

// FormatSubject builds the engine/item/stage subject line rendered by the
// status command and by interactive progress output, e.g.
// "Shell · Item #7 (Converting)".
func FormatSubject(engine, itemID, stage string) string {
	engine = strings.TrimSpace(engine)
	itemID = strings.TrimSpace(itemID)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 2)
	if engine != "" {
		if len(engine) > 1 {
			engine = strings.ToUpper(engine[:1]) + strings.ToLower(engine[1:])
		} else {
			engine = strings.ToUpper(engine)
		}
		parts = append(parts, engine)
	}
	switch {
	case itemID != "" && stage != "":
		parts = append(parts, "Item #"+itemID+" ("+stage+")")
	case itemID != "":
		parts = append(parts, "Item #"+itemID)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
