package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/go-logr/zapr"
	"github.com/henderiw/idcontainer/pkg/idcontainer"
	"github.com/henderiw/idcontainer/pkg/idregistry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Script struct {
	MaxID   int64  `yaml:"maxID"`
	Indexed bool   `yaml:"indexed"`
	Steps   []Step `yaml:"steps"`
}

type Step struct {
	Op     string            `yaml:"op"`
	ID     int64             `yaml:"id,omitempty"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// defaultScript registers x, y and z, releases y and registers w, which gets
// y's id back.
var defaultScript = Script{
	Steps: []Step{
		{Op: "register", Labels: map[string]string{"name": "x"}},
		{Op: "register", Labels: map[string]string{"name": "y"}},
		{Op: "register", Labels: map[string]string{"name": "z"}},
		{Op: "release", ID: 2},
		{Op: "dump"},
		{Op: "register", Labels: map[string]string{"name": "w"}},
		{Op: "dump"},
	},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	scriptFile := flag.String("script", "", "yaml file with the steps to replay")
	dev := flag.Bool("dev", false, "use the zap development logger")
	flag.Parse()

	log, err := newLogger(*dev)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	script := defaultScript
	if *scriptFile != "" {
		s, err := loadScript(*scriptFile)
		if err != nil {
			return err
		}
		script = *s
	}

	opts := []idregistry.Option{idregistry.WithLogger(zapr.NewLogger(log.Named("registry")))}
	if script.MaxID > 0 {
		opts = append(opts, idregistry.WithMaxID(idcontainer.ID(script.MaxID)))
	}
	if script.Indexed {
		opts = append(opts, idregistry.WithIndexed())
	}
	reg := idregistry.New(opts...)

	for i, step := range script.Steps {
		if err := replay(log, reg, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}
	return nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return cfg.Build()
}

func loadScript(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s := &Script{}
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return s, nil
}

func replay(log *zap.Logger, reg idregistry.Registry, step Step) error {
	switch step.Op {
	case "register":
		id, err := reg.Register(step.Labels)
		if err != nil {
			return err
		}
		log.Info("register", zap.Int64("id", int64(id)), zap.Any("labels", step.Labels), zap.Int("count", reg.Count()))
	case "release":
		reg.Release(idcontainer.ID(step.ID))
		log.Info("release", zap.Int64("id", step.ID), zap.Int("count", reg.Count()))
	case "update":
		if err := reg.Update(idcontainer.ID(step.ID), step.Labels); err != nil {
			return err
		}
		log.Info("update", zap.Int64("id", step.ID), zap.Any("labels", step.Labels))
	case "select":
		selector, err := idregistry.ParseSelector(step.Labels)
		if err != nil {
			return err
		}
		entries := reg.GetByLabel(selector)
		ids := make([]int64, 0, len(entries))
		for id := range entries {
			ids = append(ids, int64(id))
		}
		slices.Sort(ids)
		log.Info("select", zap.String("selector", selector.String()), zap.Int64s("ids", ids))
	case "dump":
		for pos, e := range reg.List() {
			log.Info("entry", zap.Int("position", pos), zap.Int64("id", int64(e.ID())), zap.String("labels", e.Value().String()))
		}
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}
