package nl2sql

import (
	"strings"
)

var labelArtifacts = []string{"SQL Query:[/INST]", "SQL Query:"}

// ExtractSQL picks the first line of a model reply that contains SELECT.
func ExtractSQL(response string) (string, error) {
	text := strings.TrimSpace(response)
	for _, artifact := range labelArtifacts {
		text = strings.ReplaceAll(text, artifact, "")
	}
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "SELECT") {
		return "", ErrNoSQL
	}

	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "SELECT") {
			continue
		}
		sql := strings.TrimSpace(line)
		sql = strings.TrimSpace(strings.TrimPrefix(sql, "SQL:"))
		sql = stripInlineFence(sql)
		sql = strings.ReplaceAll(sql, `\_`, "_")
		if sql == "" {
			return "", ErrNoSQL
		}
		return sql, nil
	}
	return "", ErrNoSQL
}

// stripInlineFence removes backtick fences wrapped around a single line.
func stripInlineFence(value string) string {
	trimmed := value
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSuffix(trimmed, "```")
	if strings.HasPrefix(trimmed, "`") && strings.HasSuffix(trimmed, "`") && len(trimmed) > 1 {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	return strings.TrimSpace(trimmed)
}

func isReadOnlySQL(sql string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(sql))
	return strings.HasPrefix(normalized, "SELECT") || strings.HasPrefix(normalized, "WITH")
}
