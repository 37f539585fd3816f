package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Casegraph/internal/graph"
	"github.com/shaiso/Casegraph/internal/recompute"
)

// Default значения конфигурации.
const (
	defaultStepTimeout = 30 * time.Second
	defaultSweepWindow = 24 * time.Hour
)

// File — декларация графа пересчёта из YAML-файла.
//
// Graph, trigger table и реестр recomputer-ов полностью описываются
// конфигурацией: добавление нового типа артефакта — это новая запись
// в nodes и, при необходимости, в triggers, без изменения кода.
type File struct {
	// StepTimeout — лимит времени на шаг ("45s", "2m"). Default: 30s.
	StepTimeout string `yaml:"step_timeout"`

	// SupersedeActive — отменять ли выполняющийся job дела
	// при новом триггере по тому же делу.
	SupersedeActive bool `yaml:"supersede_active"`

	// Nodes — узлы графа зависимостей в порядке объявления.
	Nodes []NodeConfig `yaml:"nodes"`

	// Triggers — соответствие (event, entity) → seed-узлы.
	Triggers []TriggerConfig `yaml:"triggers"`

	// Sweep — расписание reconcile sweep (опционально).
	Sweep *SweepConfig `yaml:"sweep"`
}

// NodeConfig — объявление одного узла графа.
type NodeConfig struct {
	// Type — тип производного артефакта.
	Type string `yaml:"type"`

	// DependsOn — типы узлов, от выходов которых зависит этот узел.
	DependsOn []string `yaml:"depends_on"`

	// Endpoint — URL recompute-сервиса узла.
	Endpoint string `yaml:"endpoint"`
}

// TriggerConfig — одно правило trigger table.
type TriggerConfig struct {
	Event  string   `yaml:"event"`
	Entity string   `yaml:"entity"`
	Seeds  []string `yaml:"seeds"`
}

// SweepConfig — расписание фонового reconcile sweep.
type SweepConfig struct {
	// Cron — выражение расписания (например, "0 3 * * *").
	Cron string `yaml:"cron"`

	// Window — окно недавней активности дел ("24h"). Default: 24h.
	Window string `yaml:"window"`
}

// Load читает и разбирает конфигурацию из файла.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse разбирает конфигурацию из YAML.
func Parse(data []byte) (*File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyConfig
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	for _, node := range cfg.Nodes {
		if node.Endpoint == "" {
			return nil, fmt.Errorf("%w: node %q", ErrMissingEndpoint, node.Type)
		}
	}

	// Ранняя валидация: ошибки графа и триггеров должны падать на старте,
	// а не на первом событии
	g, err := cfg.BuildGraph()
	if err != nil {
		return nil, err
	}
	if _, err := cfg.BuildTriggers(g); err != nil {
		return nil, err
	}
	if _, err := cfg.StepTimeoutDuration(); err != nil {
		return nil, err
	}
	if cfg.Sweep != nil {
		if _, err := cfg.Sweep.WindowDuration(); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// StepTimeoutDuration возвращает лимит времени на шаг.
func (f *File) StepTimeoutDuration() (time.Duration, error) {
	if f.StepTimeout == "" {
		return defaultStepTimeout, nil
	}
	d, err := time.ParseDuration(f.StepTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: step_timeout %q", ErrInvalidDuration, f.StepTimeout)
	}
	return d, nil
}

// WindowDuration возвращает окно недавней активности для sweep.
func (s *SweepConfig) WindowDuration() (time.Duration, error) {
	if s.Window == "" {
		return defaultSweepWindow, nil
	}
	d, err := time.ParseDuration(s.Window)
	if err != nil {
		return 0, fmt.Errorf("%w: sweep window %q", ErrInvalidDuration, s.Window)
	}
	return d, nil
}

// BuildGraph строит граф зависимостей по объявлениям узлов.
func (f *File) BuildGraph() (*graph.Graph, error) {
	defs := make([]graph.NodeDef, 0, len(f.Nodes))
	for _, node := range f.Nodes {
		defs = append(defs, graph.NodeDef{
			Type:      node.Type,
			DependsOn: node.DependsOn,
		})
	}
	return graph.New(defs)
}

// BuildTriggers строит trigger table, валидируя её против графа.
func (f *File) BuildTriggers(g *graph.Graph) (*graph.TriggerTable, error) {
	rules := make([]graph.TriggerRule, 0, len(f.Triggers))
	for _, t := range f.Triggers {
		rules = append(rules, graph.TriggerRule{
			Event:  t.Event,
			Entity: t.Entity,
			Seeds:  t.Seeds,
		})
	}
	return graph.NewTriggerTable(rules, g)
}

// BuildRegistry создаёт реестр recomputer-ов: по HTTPRecomputer
// на каждый объявленный endpoint.
func (f *File) BuildRegistry() *recompute.Registry {
	registry := recompute.NewRegistry()
	for _, node := range f.Nodes {
		registry.Register(node.Type, recompute.NewHTTPRecomputer(node.Endpoint))
	}
	return registry
}
