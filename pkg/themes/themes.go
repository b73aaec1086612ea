// Package themes resolves the named theme and light/dark variant used by the
// HTML renderer and the calendar embed.
package themes

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Built-in theme identifiers.
const (
	DefaultTheme   = "leadform"
	VariantLight   = "light"
	VariantDark    = "dark"
	StylesheetKey  = "vanilla.stylesheet"
	DefaultVersion = "1.0.0"
)

// ErrUnknownTheme is returned when a selection names an unregistered theme or
// variant.
var ErrUnknownTheme = errors.New("themes: unknown theme")

// DefaultManifest returns the built-in theme: neutral tokens with a dark
// variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: DefaultVersion,
		Tokens: map[string]string{
			"background":   "#ffffff",
			"foreground":   "#1c2024",
			"muted":        "#60646c",
			"border":       "#e0e1e6",
			"primary":      "#6e56cf",
			"primary-text": "#ffffff",
			"destructive":  "#e5484d",
			"radius":       "0.5rem",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				StylesheetKey: "leadform.css",
			},
		},
		Variants: map[string]theme.Variant{
			VariantDark: {
				Tokens: map[string]string{
					"background": "#111113",
					"foreground": "#edeef0",
					"muted":      "#b0b4ba",
					"border":     "#2e3135",
					"primary":    "#8e7ee0",
				},
			},
		},
	}
}

// Selector resolves theme selections from registered manifests. It
// satisfies go-theme's ThemeSelector and exposes the same manifests through a
// go-theme provider for hosts that share it.
type Selector struct {
	manifests      map[string]*theme.Manifest
	provider       theme.ThemeProvider
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector registers manifests after the built-in one. A later manifest
// replaces an earlier one with the same name.
func NewSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*Selector, error) {
	s := &Selector{
		manifests:      make(map[string]*theme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.ToLower(strings.TrimSpace(defaultVariant)),
	}
	if s.defaultTheme == "" {
		s.defaultTheme = DefaultTheme
	}

	order := make([]string, 0, len(manifests)+1)
	for _, manifest := range append([]*theme.Manifest{DefaultManifest()}, manifests...) {
		if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
			return nil, errors.New("themes: manifest name is required")
		}
		if _, seen := s.manifests[manifest.Name]; !seen {
			order = append(order, manifest.Name)
		}
		s.manifests[manifest.Name] = manifest
	}
	if _, ok := s.manifests[s.defaultTheme]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownTheme, s.defaultTheme)
	}

	registry := theme.NewRegistry()
	for _, name := range order {
		if err := registry.Register(s.manifests[name]); err != nil {
			return nil, fmt.Errorf("themes: register %q: %w", name, err)
		}
	}
	s.provider = registry
	return s, nil
}

// Provider exposes the manifests as a go-theme provider.
func (s *Selector) Provider() theme.ThemeProvider {
	return s.provider
}

// Names lists registered themes.
func (s *Selector) Names() []string {
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select implements theme.ThemeSelector. Empty arguments fall back to the
// selector defaults; "light" and "" always resolve to the base manifest.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	variant = strings.ToLower(strings.TrimSpace(variant))
	if variant == "" {
		variant = s.defaultVariant
	}

	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if variant != "" && variant != VariantLight {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q has no variant %q", ErrUnknownTheme, name, variant)
		}
	}
	if variant == "" {
		variant = VariantLight
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Resolve selects a theme and converts it into renderer configuration.
func (s *Selector) Resolve(name, variant string) (*theme.RendererConfig, error) {
	selection, err := s.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return RendererConfig(selection, nil), nil
}

// RendererConfig flattens a selection: variant tokens, templates and asset
// files override the base manifest, fallbacks fill template keys neither
// defines, and every token becomes a "--<name>" CSS variable.
func RendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: make(map[string]string),
		Tokens:   make(map[string]string),
		CSSVars:  make(map[string]string),
	}
	for key, value := range fallbacks {
		cfg.Partials[key] = value
	}

	assets := make(map[string]string)
	prefix := ""
	if manifest := selection.Manifest; manifest != nil {
		mergeInto(cfg.Tokens, manifest.Tokens)
		mergeInto(cfg.Partials, manifest.Templates)
		mergeInto(assets, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix
		if v, ok := manifest.Variants[selection.Variant]; ok {
			mergeInto(cfg.Tokens, v.Tokens)
			mergeInto(cfg.Partials, v.Templates)
			mergeInto(assets, v.Assets.Files)
			if v.Assets.Prefix != "" {
				prefix = v.Assets.Prefix
			}
		}
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := assets[key]
		if !ok || file == "" {
			return ""
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

// CSSVarsStyle renders CSS variables as a sorted declaration list suitable
// for a style attribute.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}

// EmbedTheme maps a variant onto the light/dark value calendar embeds accept.
func EmbedTheme(cfg *theme.RendererConfig) string {
	if cfg != nil && cfg.Variant == VariantDark {
		return VariantDark
	}
	return VariantLight
}

func mergeInto(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
