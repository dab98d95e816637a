package theme_test

import (
	"path/filepath"
	"testing"

	"Bt1Arena/core/theme"
)

func TestAdjust(t *testing.T) {
	tests := []struct {
		name   string
		hex    string
		amount int
		want   string
	}{
		{name: "lighten", hex: "#101010", amount: 20, want: "#242424"},
		{name: "clamp high", hex: "#f0fff0", amount: 20, want: "#ffffff"},
		{name: "clamp low", hex: "#100510", amount: -20, want: "#000000"},
		{name: "zero delta", hex: "#ff6b9d", amount: 0, want: "#ff6b9d"},
		{name: "channels independent", hex: "#ff0080", amount: 20, want: "#ff1494"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := theme.Adjust(tt.hex, tt.amount); got != tt.want {
				t.Errorf("Adjust(%q, %d) = %q, want %q", tt.hex, tt.amount, got, tt.want)
			}
		})
	}
}

func TestValidHexColor(t *testing.T) {
	valid := []string{"#ff6b9d", "#000000", "#FFFFFF", "#AbCdEf"}
	for _, c := range valid {
		if !theme.ValidHexColor(c) {
			t.Errorf("ValidHexColor(%q) = false, want true", c)
		}
	}

	invalid := []string{"", "#fff", "ff6b9d", "#ff6b9", "#ff6b9dd", "#gg6b9d", "red"}
	for _, c := range invalid {
		if theme.ValidHexColor(c) {
			t.Errorf("ValidHexColor(%q) = true, want false", c)
		}
	}
}

func TestApplyDerivedVariants(t *testing.T) {
	vars := theme.Apply(theme.Default)

	if vars["--accent"] != "#ff6b9d" {
		t.Errorf("--accent = %q, want #ff6b9d", vars["--accent"])
	}
	if vars["--bg"] != "#1a1a2e" {
		t.Errorf("--bg = %q, want #1a1a2e", vars["--bg"])
	}

	// hover = accent + 20 per channel, clamped
	if vars["--accent-hover"] != "#ff7fb1" {
		t.Errorf("--accent-hover = %q, want #ff7fb1", vars["--accent-hover"])
	}
	// muted = accent with a fixed alpha suffix
	if vars["--accent-muted"] != "#ff6b9d33" {
		t.Errorf("--accent-muted = %q, want #ff6b9d33", vars["--accent-muted"])
	}
}

func TestPresets(t *testing.T) {
	names := []string{"classic", "ocean", "forest", "sunset", "monochrome"}
	if len(theme.Presets) != len(names) {
		t.Fatalf("len(Presets) = %d, want %d", len(theme.Presets), len(names))
	}
	for _, name := range names {
		preset, ok := theme.Presets[name]
		if !ok {
			t.Errorf("missing preset %q", name)
			continue
		}
		if err := preset.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}

	if theme.Presets["classic"] != theme.Default {
		t.Error("classic preset should equal the default palette")
	}
}

func TestEngineSetPreset(t *testing.T) {
	store := &theme.MemoryStore{}
	engine, err := theme.NewEngine(store)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if engine.Current() != theme.Default {
		t.Fatal("new engine should start from the default palette")
	}

	if err := engine.SetPreset("ocean"); err != nil {
		t.Fatalf("SetPreset(ocean): %v", err)
	}
	if engine.Current() != theme.Presets["ocean"] {
		t.Error("engine did not switch to the ocean preset")
	}

	stored, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("store.Load() = %v, %v, %v", stored, ok, err)
	}
	if stored != theme.Presets["ocean"] {
		t.Error("preset was not persisted to the store")
	}

	// 未知预设名不报错也不改变状态
	if err := engine.SetPreset("neon"); err != nil {
		t.Fatalf("SetPreset(neon): %v", err)
	}
	if engine.Current() != theme.Presets["ocean"] {
		t.Error("unknown preset name must be a no-op")
	}
}

func TestEngineSetValidatesColors(t *testing.T) {
	engine, err := theme.NewEngine(&theme.MemoryStore{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	bad := theme.Colors{AccentColor: "red", BackgroundColor: "#1a1a2e", CardColor: "#16213e", TextColor: "#e5e5e5"}
	if err := engine.Set(bad); err == nil {
		t.Error("Set with an invalid color should fail")
	}
	if engine.Current() != theme.Default {
		t.Error("failed Set must not change the active palette")
	}
}

func TestEngineReset(t *testing.T) {
	engine, err := theme.NewEngine(&theme.MemoryStore{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if err := engine.SetPreset("forest"); err != nil {
		t.Fatalf("SetPreset: %v", err)
	}
	if err := engine.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if engine.Current() != theme.Default {
		t.Error("Reset should reapply the default palette")
	}

	vars := engine.Variables()
	if vars["--accent-hover"] != "#ff7fb1" {
		t.Errorf("derived hover after reset = %q, want #ff7fb1", vars["--accent-hover"])
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme", "active.json")
	store := &theme.FileStore{Path: path}

	// 文件不存在不是错误
	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("Load on missing file = ok=%v err=%v, want miss without error", ok, err)
	}

	want := theme.Presets["sunset"]
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v, %v", got, ok, err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	// 引擎从已存在的存储启动时恢复上次的主题
	engine, err := theme.NewEngine(store)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if engine.Current() != want {
		t.Error("engine should start from the stored palette")
	}
}
