package profile

import (
	"fmt"
	"strings"
)

// markdownEscaper backslash-escapes characters that carry meaning in inline markdown.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`,
	`<`, `\<`, `>`, `\>`, `#`, `\#`, `|`, `\|`,
)

// Summary renders the profiles and the current profile as a markdown document.
// Profiles are listed in the order given.
func Summary(profiles []*Profile, current string) string {
	var b strings.Builder

	b.WriteString("# Tab profiles\n\n")
	if current == "" {
		b.WriteString("Current profile: _none_\n")
	} else {
		fmt.Fprintf(&b, "Current profile: **%s**\n", markdownEscaper.Replace(current))
	}

	if len(profiles) == 0 {
		b.WriteString("\n_No profiles yet._\n")
		return b.String()
	}

	for _, p := range profiles {
		b.WriteString("\n## ")
		b.WriteString(markdownEscaper.Replace(p.Name))
		if p.Active {
			b.WriteString(" (active)")
		}
		b.WriteString("\n\n")

		if len(p.Tabs) == 0 {
			b.WriteString("_No saved tabs._\n")
			continue
		}
		for i, t := range p.Tabs {
			fmt.Fprintf(&b, "%d. %s", i+1, inlineCode(t.URL))
			if t.Pinned {
				b.WriteString(" (pinned)")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// inlineCode wraps s in a code span long enough to contain any backtick runs in s.
func inlineCode(s string) string {
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}
