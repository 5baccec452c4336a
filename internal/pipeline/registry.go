package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand/v2"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/dataset"
	"github.com/abhisek/earlyedge/internal/model"
)

// Registry holds every loaded screen. It is built once at startup and
// only read afterwards, so it is safe for concurrent use.
type Registry struct {
	spelling        *Spelling
	handwriting     *Handwriting
	phono           *Phono
	arithmetic      *Arithmetic
	numberSense     *NumberSense
	tracing         *Tracing
	letterConfusion *LetterConfusion

	loaded []Modality
}

// Options customizes Load.
type Options struct {
	// Factories adds classifier types, such as onnx.
	Factories map[string]model.Factory
	// Pick returns a uniform index in [0, n). Default: rand.IntN.
	Pick func(n int) int
}

// Load builds the registry for every modality enabled in cfg. Any
// failure is a Configuration error.
func Load(cfg config.Config, logger *log.Logger, opts Options) (*Registry, error) {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Pick == nil {
		opts.Pick = rand.IntN
	}
	l := &loader{cfg: cfg, logger: logger, opts: opts}

	r := &Registry{}
	for _, name := range config.AllModalities {
		if !cfg.Enabled(name) {
			continue
		}
		m, err := l.model(name)
		if err != nil {
			return nil, err
		}
		mod, err := l.build(r, name, m)
		if err != nil {
			return nil, err
		}
		r.loaded = append(r.loaded, mod)
		logger.Printf("Loaded %s screen: model %s (%s, %d features, classes %v)",
			name, m.Name(), m.Kind(), mod.FeatureWidth(), m.Classes())
	}
	if len(r.loaded) == 0 {
		return nil, Configuration("registry", errors.New("no modalities enabled"))
	}
	return r, nil
}

type loader struct {
	cfg    config.Config
	logger *log.Logger
	opts   Options
}

func (l *loader) model(name string) (*model.Model, error) {
	path := l.cfg.ModelPath(l.cfg.ModelFile(name))
	m, err := model.Load(path, model.LoadOptions{Factories: l.opts.Factories})
	if err != nil {
		return nil, Configuration(name+" model", err)
	}
	return m, nil
}

func (l *loader) build(r *Registry, name string, m *model.Model) (Modality, error) {
	switch name {
	case config.Spelling:
		items, err := dataset.LoadSpellingItems(l.cfg.DataPath(l.cfg.Data.SpellingItems))
		if err != nil {
			return nil, Configuration("spelling prompts", err)
		}
		key, err := dataset.LoadAnswerKey(l.cfg.DataPath(l.cfg.Data.SpellingKey))
		if err != nil {
			return nil, Configuration("spelling answer key", err)
		}
		s, err := NewSpelling(m, items, key, l.cfg.AudioDir, l.opts.Pick)
		r.spelling = s
		return s, err
	case config.Handwriting:
		h, err := NewHandwriting(m, l.cfg.HandwritingMaxFiles)
		r.handwriting = h
		return h, err
	case config.Phono:
		qs, qerr := dataset.LoadQuestions(l.cfg.DataPath(l.cfg.Data.PhonoQuestions))
		switch {
		case errors.Is(qerr, fs.ErrNotExist):
			l.logger.Printf("Phono questions unavailable: %v", qerr)
			qerr = NotFound("Questions file not found")
		case qerr != nil:
			return nil, Configuration("phono questions", qerr)
		}
		p, err := NewPhono(m, qs, qerr)
		r.phono = p
		return p, err
	case config.Arithmetic:
		a, err := NewArithmetic(m)
		r.arithmetic = a
		return a, err
	case config.NumberSense:
		qs, err := dataset.LoadNumberQuestions(l.cfg.DataPath(l.cfg.Data.NumberQuestions))
		if err != nil {
			return nil, Configuration("number questions", err)
		}
		n, err := NewNumberSense(m, qs, l.opts.Pick)
		r.numberSense = n
		return n, err
	case config.Tracing:
		t, err := NewTracing(m)
		r.tracing = t
		return t, err
	case config.LetterConfusion:
		lc, err := NewLetterConfusion(m)
		r.letterConfusion = lc
		return lc, err
	}
	return nil, Configuration("registry", fmt.Errorf("unknown modality %q", name))
}

// Modalities lists the loaded screens in load order.
func (r *Registry) Modalities() []Modality {
	return append([]Modality(nil), r.loaded...)
}

// Accessors return nil when the screen is disabled.

func (r *Registry) Spelling() *Spelling               { return r.spelling }
func (r *Registry) Handwriting() *Handwriting         { return r.handwriting }
func (r *Registry) Phono() *Phono                     { return r.phono }
func (r *Registry) Arithmetic() *Arithmetic           { return r.arithmetic }
func (r *Registry) NumberSense() *NumberSense         { return r.numberSense }
func (r *Registry) Tracing() *Tracing                 { return r.tracing }
func (r *Registry) LetterConfusion() *LetterConfusion { return r.letterConfusion }
