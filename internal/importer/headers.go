package importer

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Kind es el tipo de padrón que se importa.
type Kind string

const (
	KindClients  Kind = "clientes"
	KindAdvisors Kind = "asesores"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindClients:
		return KindClients, nil
	case KindAdvisors:
		return KindAdvisors, nil
	}
	return "", fmt.Errorf("tipo de importación desconocido: %q", s)
}

type fieldSpec struct {
	Field    string   `yaml:"field"`
	Label    string   `yaml:"label"`
	Required bool     `yaml:"required"`
	Aliases  []string `yaml:"aliases"`
}

type aliasTable map[Kind][]fieldSpec

//go:embed aliases.yaml
var aliasesYAML []byte

var aliases = mustLoadAliases(aliasesYAML)

func mustLoadAliases(data []byte) aliasTable {
	var t aliasTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		panic(fmt.Sprintf("importer: invalid aliases.yaml: %v", err))
	}
	for kind, specs := range t {
		for i := range specs {
			for j, a := range specs[i].Aliases {
				specs[i].Aliases[j] = NormalizeHeader(a)
			}
		}
		t[kind] = specs
	}
	return t
}

// HeaderError lista los campos obligatorios sin encabezado en la hoja.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return "No se encontraron los campos: " + strings.Join(e.Missing, ", ")
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader: "  nombre_y  apellidos " -> "NOMBRE Y APELLIDOS", "Campaña" -> "CAMPANA".
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	if folded, _, err := transform.String(accentFolder, h); err == nil {
		h = folded
	}
	h = strings.NewReplacer("_", " ", ".", " ").Replace(h)
	return strings.ToUpper(strings.Join(strings.Fields(h), " "))
}

// columns asocia cada campo lógico con su índice en la fila.
type columns map[string]int

func (c columns) value(row []string, field string) string {
	idx, ok := c[field]
	if !ok {
		return ""
	}
	return cellValue(row, idx)
}

func (c columns) has(field string) bool {
	_, ok := c[field]
	return ok
}

func resolveColumns(kind Kind, header []string) (columns, error) {
	specs, ok := aliases[kind]
	if !ok {
		return nil, fmt.Errorf("tipo de importación desconocido: %q", kind)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		n := NormalizeHeader(h)
		if n == "" {
			continue
		}
		if _, dup := index[n]; !dup {
			index[n] = i
		}
	}

	cols := columns{}
	var missing []string
	for _, spec := range specs {
		found := false
		for _, alias := range spec.Aliases {
			if i, ok := index[alias]; ok {
				cols[spec.Field] = i
				found = true
				break
			}
		}
		if !found && spec.Required {
			missing = append(missing, spec.Label)
		}
	}

	if len(missing) > 0 {
		return nil, &HeaderError{Missing: missing}
	}
	return cols, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
