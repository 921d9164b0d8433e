package analyzer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ToolSpec describes how to analyze one language with one tool. The snippet
// path is appended after Command.
type ToolSpec struct {
	Language  string
	Tool      string
	Extension string
	Command   []string
	Parser    Parser
}

// CommandTable maps an entry name to its ToolSpec. The entry named after a
// language is that language's primary tool; further entries for the same
// language (for example "python-mypy") only run through RunAll.
type CommandTable map[string]ToolSpec

// DefaultCommandTable returns the built-in tools
func DefaultCommandTable() CommandTable {
	return CommandTable{
		"python": {
			Language:  "python",
			Tool:      "pylint",
			Extension: ".py",
			Command:   []string{"pylint", "--disable=all", "--enable=E,W", "--output-format=text"},
			Parser:    LintParser{},
		},
		"python-mypy": {
			Language:  "python",
			Tool:      "mypy",
			Extension: ".py",
			Command:   []string{"mypy", "--ignore-missing-imports", "--show-error-codes"},
			Parser:    TypeCheckParser{},
		},
		"python-crosshair": {
			Language:  "python",
			Tool:      "crosshair",
			Extension: ".py",
			Command:   []string{"crosshair", "check"},
			Parser:    ContractParser{},
		},
		"cpp": {
			Language:  "cpp",
			Tool:      "cppcheck",
			Extension: ".cpp",
			Command:   []string{"cppcheck", "--enable=warning,style", "--template=gcc"},
			Parser:    GCCParser{},
		},
		"java": {
			Language:  "java",
			Tool:      "checkstyle",
			Extension: ".java",
			Command:   []string{"checkstyle", "-c", "/google_checks.xml"},
			Parser:    CheckstyleParser{},
		},
	}
}

// Clone returns a shallow copy of the table
func (t CommandTable) Clone() CommandTable {
	out := make(CommandTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Names returns the entry names in a stable order
func (t CommandTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Languages returns the distinct languages the table can analyze
func (t CommandTable) Languages() []string {
	seen := map[string]bool{}
	var langs []string
	for _, name := range t.Names() {
		lang := t[name].Language
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// WithOverrides returns a copy of t with entries replaced or added from raw
// "ext|command args[|parser]" specs keyed by entry name
func (t CommandTable) WithOverrides(overrides map[string]string) (CommandTable, error) {
	out := t.Clone()
	for name, raw := range overrides {
		name = CanonicalLanguage(name)
		spec, err := ParseToolSpec(name, raw)
		if err != nil {
			return nil, err
		}
		if existing, ok := t[name]; ok {
			spec.Language = existing.Language
			if !hasParserSuffix(raw) {
				spec.Parser = existing.Parser
			}
		}
		out[name] = spec
	}
	return out, nil
}

// ParseToolSpec parses "ext|command args[|parser]". The language is the part
// of name before the first "-". Without a parser name the parser is picked by
// the command's binary name, falling back to the gcc style parser.
func ParseToolSpec(name, raw string) (ToolSpec, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return ToolSpec{}, fmt.Errorf("tool override %q: want \"ext|command args[|parser]\", got %q", name, raw)
	}

	ext := strings.TrimSpace(parts[0])
	if !strings.HasPrefix(ext, ".") {
		return ToolSpec{}, fmt.Errorf("tool override %q: extension %q must start with a dot", name, ext)
	}

	command := strings.Fields(parts[1])
	if len(command) == 0 {
		return ToolSpec{}, fmt.Errorf("tool override %q: empty command", name)
	}

	parser, ok := parserByName(filepath.Base(command[0]))
	if !ok {
		parser = GCCParser{}
	}
	if len(parts) == 3 {
		p, ok := parserByName(strings.TrimSpace(parts[2]))
		if !ok {
			return ToolSpec{}, fmt.Errorf("tool override %q: unknown parser %q", name, parts[2])
		}
		parser = p
	}

	lang, _, _ := strings.Cut(name, "-")
	return ToolSpec{
		Language:  lang,
		Tool:      command[0],
		Extension: ext,
		Command:   command,
		Parser:    parser,
	}, nil
}

func hasParserSuffix(raw string) bool {
	return strings.Count(raw, "|") == 2
}

// CanonicalLanguage lowercases and trims a language name and folds common aliases
func CanonicalLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "c++", "cxx", "cc":
		return "cpp"
	case "py", "python3":
		return "python"
	default:
		return lang
	}
}
