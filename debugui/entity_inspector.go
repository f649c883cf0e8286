package debugui

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/shelfmaze/ecs"
	"github.com/plus3/shelfmaze/game"
)

type FieldInfo struct {
	Name      string
	Index     int
	IsPointer bool
}

// ReflectionCache memoises the exported fields of component types.
type ReflectionCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{fields: make(map[reflect.Type][]FieldInfo)}
}

func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fields[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			fields = append(fields, FieldInfo{
				Name:      f.Name,
				Index:     i,
				IsPointer: f.Type.Kind() == reflect.Pointer,
			})
		}
	}
	rc.fields[t] = fields
	return fields
}

var globalReflectionCache = NewReflectionCache()

var stringerType = reflect.TypeFor[fmt.Stringer]()

// formatValue renders a component field for display.
func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return "<invalid>"
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "nil"
		}
		v = v.Elem()
	}
	if v.Type().Implements(stringerType) && v.CanInterface() {
		return v.Interface().(fmt.Stringer).String()
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Struct:
		if v.NumField() == 2 && v.Field(0).Kind() == reflect.Float64 && v.Field(1).Kind() == reflect.Float64 {
			return fmt.Sprintf("(%.2f, %.2f)", v.Field(0).Float(), v.Field(1).Float())
		}
	}
	if v.CanInterface() {
		return fmt.Sprintf("%v", v.Interface())
	}
	return v.Kind().String()
}

// componentLines describes every exported field of a component, one per line.
func componentLines(component any) []string {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return []string{formatValue(v)}
	}

	fields := globalReflectionCache.GetFields(v.Type())
	if len(fields) == 0 {
		return []string{formatValue(v)}
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Name, formatValue(v.Field(f.Index))))
	}
	return lines
}

// EntityInspector lists the player and every book with their components.
type EntityInspector struct {
	session  *game.Session
	hazards  *ecs.View[struct{ *game.Hazard }]
	selected ecs.EntityId
}

func NewEntityInspector(session *game.Session) *EntityInspector {
	return &EntityInspector{
		session: session,
		hazards: ecs.NewView[struct{ *game.Hazard }](session.Storage()),
	}
}

func (ei *EntityInspector) Render() {
	if !imgui.BeginV("Entities", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	storage := ei.session.Storage()
	player := ei.session.PlayerEntity()
	if imgui.SelectableBoolV(fmt.Sprintf("Player %s", player), ei.selected == player, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
		ei.selected = player
	}
	for id, h := range ei.hazards.Iter() {
		label := fmt.Sprintf("Book #%d %s", h.Serial, id)
		if imgui.SelectableBoolV(label, ei.selected == id, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
			ei.selected = id
		}
	}

	imgui.Separator()
	types := storage.ComponentTypes(ei.selected)
	if types == nil {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	for _, t := range types {
		component := storage.GetComponent(ei.selected, t)
		if component == nil {
			continue
		}
		if imgui.TreeNodeStr(t.String()) {
			for _, line := range componentLines(component) {
				imgui.Text(line)
			}
			imgui.TreePop()
		}
	}

	imgui.End()
}
