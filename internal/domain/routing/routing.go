// Package routing resuelve la bodega de despacho a partir de la provincia del envío.
package routing

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// prefijos administrativos que se ignoran ("Tỉnh Nghệ An", "TP. Hồ Chí Minh"), ya plegados
var adminPrefixes = []string{"thành phố ", "tỉnh ", "tp. ", "tp.", "tp "}

// Table tabla inmutable provincia -> bodega. Segura para uso concurrente.
type Table struct {
	exact     map[string]int64
	folded    map[string]int64
	targets   []int64
	defaultID int64
}

// NewTable construye la tabla. defaultID debe ser una de las bodegas destino.
func NewTable(entries []Entry, defaultID int64) (*Table, error) {
	t := &Table{
		exact:     make(map[string]int64, len(entries)),
		folded:    make(map[string]int64, len(entries)),
		defaultID: defaultID,
	}
	seen := map[int64]bool{}
	for _, e := range entries {
		name := normalize(e.Region)
		if name == "" {
			return nil, fmt.Errorf("routing: región vacía para bodega %d", e.WarehouseID)
		}
		key := fold(name)
		if prev, ok := t.folded[key]; ok && prev != e.WarehouseID {
			return nil, fmt.Errorf("routing: región %q asignada a %d y %d", e.Region, prev, e.WarehouseID)
		}
		t.exact[name] = e.WarehouseID
		t.folded[key] = e.WarehouseID
		if !seen[e.WarehouseID] {
			seen[e.WarehouseID] = true
			t.targets = append(t.targets, e.WarehouseID)
		}
	}
	if !seen[defaultID] {
		return nil, fmt.Errorf("routing: la bodega por defecto %d no está en la tabla", defaultID)
	}
	sort.Slice(t.targets, func(i, j int) bool { return t.targets[i] < t.targets[j] })
	return t, nil
}

// Default tabla de 63 provincias más alias, con Hà Nội como bodega por defecto.
func Default() *Table {
	t, err := NewTable(append(Provinces(), Aliases()...), WarehouseNorth)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve devuelve la bodega para la región. Nunca falla: sin coincidencia devuelve la bodega por defecto.
func (t *Table) Resolve(region string) int64 {
	id, _ := t.Lookup(region)
	return id
}

// Lookup como Resolve, e indica si la región se reconoció (false = se usó la bodega por defecto).
func (t *Table) Lookup(region string) (int64, bool) {
	name := normalize(region)
	if name == "" {
		return t.defaultID, false
	}
	if id, ok := t.exact[name]; ok {
		return id, true
	}
	key := fold(name)
	if id, ok := t.folded[key]; ok {
		return id, true
	}
	for _, p := range adminPrefixes {
		if rest, ok := strings.CutPrefix(key, p); ok {
			if id, ok := t.folded[strings.TrimSpace(rest)]; ok {
				return id, true
			}
		}
	}
	return t.defaultID, false
}

// DefaultID bodega usada cuando no hay coincidencia.
func (t *Table) DefaultID() int64 { return t.defaultID }

// Targets bodegas destino ordenadas.
func (t *Table) Targets() []int64 {
	return append([]int64(nil), t.targets...)
}

// normalize recorta, compone a NFC y colapsa espacios internos.
func normalize(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// cases.Caser no es seguro entre goroutines; se crea uno por llamada.
func fold(s string) string {
	return cases.Fold().String(s)
}
