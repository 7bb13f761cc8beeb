package cvat

import (
	"regexp"
	"strings"
)

var selfClosing = regexp.MustCompile(`<(\w+)([^>]*?)/>`)

// CollapseSelfClosing rewrites strict self-closing tags, <tag attrs/>, into
// explicit <tag attrs></tag> pairs. Forms with a space before the slash,
// <tag attrs />, are left untouched; downstream byte comparison depends on
// exactly that distinction.
func CollapseSelfClosing(s string) string {
	return selfClosing.ReplaceAllStringFunc(s, func(match string) string {
		sub := selfClosing.FindStringSubmatch(match)
		if strings.HasSuffix(sub[2], " ") {
			return match
		}
		return "<" + sub[1] + sub[2] + "></" + sub[1] + ">"
	})
}

// RemoveBlankLines drops blank lines that either follow another blank line
// or follow an opening tag or XML declaration. Comments do not count as
// tags. The first line is always kept.
func RemoveBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var kept []string

	for i, line := range lines {
		if i == 0 {
			kept = append(kept, line)
			continue
		}

		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
			continue
		}

		prev := strings.TrimSpace(kept[len(kept)-1])
		if prev == "" {
			continue
		}
		prevIsTag := strings.HasPrefix(prev, "<?") ||
			(strings.HasPrefix(prev, "<") && !strings.HasPrefix(prev, "<!--"))
		if prevIsTag {
			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// Format runs both canonicalization passes. Running Format over its own
// output is byte-identical.
func Format(s string) string {
	return RemoveBlankLines(CollapseSelfClosing(s))
}
