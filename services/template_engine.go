package services

import (
	"html"
	"regexp"
	"strings"
)

// variableRegex matches {{variable}} placeholders, tolerating spaces inside the braces
var variableRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// TemplateAnalysis splits the variables of a template by where their value comes from
type TemplateAnalysis struct {
	Automatic map[string]string `json:"automatiques"`
	Manual    map[string]string `json:"manuelles"`
}

// ExtractVariables returns the distinct variable names referenced by content, in order of first appearance
func ExtractVariables(content string) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, m := range variableRegex.FindAllStringSubmatch(content, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// AnalyzeTemplate partitions the template variables into automatic ones (with their value)
// and manual ones (with an empty value awaiting user input)
func AnalyzeTemplate(content string, vars map[string]string) TemplateAnalysis {
	analysis := TemplateAnalysis{
		Automatic: make(map[string]string),
		Manual:    make(map[string]string),
	}
	for _, name := range ExtractVariables(content) {
		if value, ok := vars[name]; ok {
			analysis.Automatic[name] = value
		} else {
			analysis.Manual[name] = ""
		}
	}
	return analysis
}

// RenderTemplate replaces every placeholder occurrence: automatic values first, then manual
// values (an omitted manual value renders as an empty string). Text that does not match the
// placeholder syntax, such as {{client.nom}}, is left verbatim.
func RenderTemplate(content string, vars map[string]string, manual map[string]string) string {
	return variableRegex.ReplaceAllStringFunc(content, func(match string) string {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}"))
		if value, ok := vars[name]; ok {
			return value
		}
		return manual[name]
	})
}

// WrapHTMLForPDF wraps plain-text letter content with print styles for PDF generation.
// The content is escaped, so markup in case fields or provider output prints as text.
func WrapHTMLForPDF(content string) string {
	return `<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <style>
        @page {
            margin: 2cm;
        }
        body {
            font-family: "Times New Roman", Times, serif;
            font-size: 12pt;
            line-height: 1.5;
            color: #000;
            text-align: justify;
            white-space: pre-wrap;
        }
        p {
            margin-bottom: 12pt;
        }
        .signature-block {
            margin-top: 48pt;
        }
    </style>
</head>
<body>
` + html.EscapeString(content) + `
</body>
</html>`
}
