package adapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

var instructionErrorPaths = [][]string{
	{"InstructionError"},
	{"err", "InstructionError"},
	{"value", "err", "InstructionError"},
	{"error", "data", "err", "InstructionError"},
}

var solanaLogPaths = [][]string{
	{"logs"},
	{"value", "logs"},
	{"data", "logs"},
	{"error", "data", "logs"},
}

// SolanaAdapter handles Solana errors
type SolanaAdapter struct {
	base
}

func NewSolanaAdapter(catalog *mapping.Catalog) *SolanaAdapter {
	return &SolanaAdapter{base: newBase(EcosystemSolana, catalog)}
}

func (a *SolanaAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		m, ok := toMap(err)
		if !ok {
			return extractBase(err)
		}

		for _, path := range instructionErrorPaths {
			if v, ok := lookup(m, path...); ok {
				if msg := instructionError(v); msg != "" {
					return msg
				}
			}
		}
		for _, path := range solanaLogPaths {
			if v, ok := lookup(m, path...); ok {
				if msg := programLogError(v); msg != "" {
					return msg
				}
			}
		}
		return extractBase(err)
	})
}

// instructionError decodes the [index, detail] tuple. A custom program
// code becomes "Program error: {code}", a named error its name.
func instructionError(v any) string {
	tuple, err := cast.ToSliceE(v)
	if err != nil || len(tuple) < 2 {
		return ""
	}

	detail := tuple[1]
	if name, ok := detail.(string); ok {
		return name
	}
	fields, err := cast.ToStringMapE(detail)
	if err != nil || len(fields) == 0 {
		return ""
	}
	if custom, ok := fields["Custom"]; ok {
		code, err := cast.ToInt64E(custom)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("Program error: %d", code)
	}

	// e.g. {"BorshIoError": "..."}: report the variant name
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

// programLogError finds the error line of a program log
func programLogError(v any) string {
	lines, err := cast.ToStringSliceE(v)
	if err != nil {
		return ""
	}
	for _, line := range lines {
		if i := strings.Index(line, "Error Message: "); i >= 0 {
			return strings.TrimSuffix(strings.TrimSpace(line[i+len("Error Message: "):]), ".")
		}
		if i := strings.Index(line, "Program log: Error: "); i >= 0 {
			return strings.TrimSpace(line[i+len("Program log: Error: "):])
		}
	}
	return ""
}

func (a *SolanaAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if msg, ok := messageOf(err); ok {
			return strings.Contains(msg, "Program ") ||
				containsAny(strings.ToLower(msg), "lamports", "blockhash", "instruction", "custom program error")
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		if hasAnyKey(m, "InstructionError", "logs", "programId") {
			return true
		}
		if inner, ok := lookup(m, "err"); ok {
			switch v := inner.(type) {
			case map[string]any:
				return true
			case string:
				return strings.Contains(v, "Instruction")
			}
		}
		return has(m, "value", "err", "InstructionError") || has(m, "error", "data", "err")
	})
}
