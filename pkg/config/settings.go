package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Setting is one addressable config value, found by its json tag path
// ("chat.max_tokens") or by the bare field name when unambiguous.
type Setting struct {
	Path   string
	Label  string
	Secret bool
	value  reflect.Value
}

var ErrSettingNotFound = fmt.Errorf("no such setting")

// Secrets are matched by exact leaf name. A substring match would also
// catch settings like max_tokens, which are not secret at all.
func isSecretName(name string) bool {
	return name == "token" || name == "api_key"
}

func jsonTag(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// walkSettings visits every leaf setting. Must be called with the lock held.
func (c *Config) walkSettings(visit func(Setting)) {
	root := reflect.ValueOf(c).Elem()
	rootT := root.Type()
	for i := 0; i < root.NumField(); i++ {
		groupF := rootT.Field(i)
		if !groupF.IsExported() || groupF.Type.Kind() != reflect.Struct {
			continue
		}
		group := root.Field(i)
		groupTag := jsonTag(groupF)
		for j := 0; j < group.NumField(); j++ {
			fieldF := groupF.Type.Field(j)
			if !fieldF.IsExported() {
				continue
			}
			field := group.Field(j)
			if field.Kind() == reflect.Struct && fieldF.Type != reflect.TypeOf(FlexibleStringSlice{}) {
				// nested group (channels.discord etc.)
				nestedTag := groupTag + "." + jsonTag(fieldF)
				for k := 0; k < field.NumField(); k++ {
					leafF := fieldF.Type.Field(k)
					if !leafF.IsExported() {
						continue
					}
					tag := jsonTag(leafF)
					visit(Setting{
						Path:   nestedTag + "." + tag,
						Label:  leafF.Tag.Get("label"),
						Secret: isSecretName(tag),
						value:  field.Field(k),
					})
				}
				continue
			}
			tag := jsonTag(fieldF)
			visit(Setting{
				Path:   groupTag + "." + tag,
				Label:  fieldF.Tag.Get("label"),
				Secret: isSecretName(tag),
				value:  field,
			})
		}
	}
}

// FindSetting resolves name against the json tag paths. A bare leaf name
// matches when only one setting carries it; dotted names match exactly.
func (c *Config) FindSetting(name string) (Setting, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findSettingLocked(name)
}

func (c *Config) findSettingLocked(name string) (Setting, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var exact *Setting
	var byLeaf []Setting
	c.walkSettings(func(s Setting) {
		if s.Path == name {
			cp := s
			exact = &cp
			return
		}
		if leaf := s.Path[strings.LastIndex(s.Path, ".")+1:]; leaf == name {
			byLeaf = append(byLeaf, s)
		}
	})
	if exact != nil {
		return *exact, nil
	}
	switch len(byLeaf) {
	case 1:
		return byLeaf[0], nil
	case 0:
		return Setting{}, fmt.Errorf("%w: %s", ErrSettingNotFound, name)
	default:
		paths := make([]string, len(byLeaf))
		for i, s := range byLeaf {
			paths[i] = s.Path
		}
		return Setting{}, fmt.Errorf("ambiguous setting %q, use one of: %s", name, strings.Join(paths, ", "))
	}
}

// Display returns the setting value as a string, masking secrets.
func (s Setting) Display() string {
	if s.Secret {
		if s.value.Kind() == reflect.String && s.value.Len() == 0 {
			return "(unset)"
		}
		return "********"
	}
	switch s.value.Kind() {
	case reflect.Slice:
		parts := make([]string, s.value.Len())
		for i := range parts {
			parts[i] = fmt.Sprintf("%v", s.value.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", s.value.Interface())
	}
}

// SetSetting parses raw according to the setting's type and assigns it.
// Returns the resolved path of the updated setting.
func (c *Config) SetSetting(name, raw string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.findSettingLocked(name)
	if err != nil {
		return "", err
	}
	if err := assign(s.value, raw); err != nil {
		return "", fmt.Errorf("setting %s: %w", s.Path, err)
	}
	return s.Path, nil
}

// ResetSetting restores a single setting to its default value.
func (c *Config) ResetSetting(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.findSettingLocked(name)
	if err != nil {
		return "", err
	}

	def := DefaultConfig()
	var defVal reflect.Value
	def.walkSettings(func(ds Setting) {
		if ds.Path == s.Path {
			defVal = ds.value
		}
	})
	if !defVal.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, name)
	}
	s.value.Set(defVal)
	return s.Path, nil
}

// SettingPaths lists every addressable setting path in declaration order.
func (c *Config) SettingPaths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var paths []string
	c.walkSettings(func(s Setting) {
		paths = append(paths, s.Path)
	})
	return paths
}

func assign(v reflect.Value, raw string) error {
	raw = strings.TrimSpace(raw)
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", raw)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", raw)
		}
		v.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", raw)
		}
		v.SetFloat(f)
	case reflect.Slice:
		if raw == "" {
			v.Set(reflect.MakeSlice(v.Type(), 0, 0))
			return nil
		}
		parts := strings.Split(raw, ",")
		out := reflect.MakeSlice(v.Type(), 0, len(parts))
		for _, p := range parts {
			out = reflect.Append(out, reflect.ValueOf(strings.TrimSpace(p)))
		}
		v.Set(out)
	default:
		return fmt.Errorf("unsupported setting type %s", v.Kind())
	}
	return nil
}
