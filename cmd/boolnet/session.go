package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/config"
	"github.com/nvandessel/boolnet/internal/logging"
	"github.com/nvandessel/boolnet/internal/metrics"
	"github.com/nvandessel/boolnet/internal/netdef"
	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/sensitivity"
	"github.com/nvandessel/boolnet/internal/store"
)

// session holds everything a command needs: resolved configuration,
// loggers, the analysis engine and output settings.
type session struct {
	cfg      *config.BoolnetConfig
	logger   *slog.Logger
	trace    *logging.TraceLogger
	recorder *metrics.Recorder
	engine   *sensitivity.Engine
	out      io.Writer
	jsonOut  bool
	noSave   bool
}

// openSession loads configuration and applies the global flags on top.
func openSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, neterr.Configf("%v", err)
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if kind, _ := flags.GetString("store"); kind != "" {
		cfg.Store.Kind = kind
	}
	if err := cfg.Validate(); err != nil {
		return nil, neterr.Configf("%v", err)
	}

	recorder, err := metrics.NewRecorder(nil)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		logger:   logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		recorder: recorder,
		engine:   sensitivity.NewEngine(cfg.Engine.Sensitivity(), sensitivity.WithRecorder(recorder)),
		out:      cmd.OutOrStdout(),
	}
	s.jsonOut, _ = flags.GetBool("json")
	s.noSave, _ = flags.GetBool("no-save")

	if logging.ParseLevel(cfg.Logging.Level) < slog.LevelInfo {
		dir, err := s.dataDir()
		if err != nil {
			s.logger.Warn("analysis trace disabled", "error", err)
		} else {
			s.trace = logging.NewTraceLogger(dir, cfg.Logging.Level)
		}
	}
	return s, nil
}

// close flushes the trace and writes the metrics textfile if one is configured.
func (s *session) close() {
	s.trace.Close()
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := s.recorder.WriteTextfile(path); err != nil {
			s.logger.Warn("metrics export failed", "path", path, "error", err)
		}
	}
}

// dataDir is the store directory, creating ~/.boolnet when none is configured.
func (s *session) dataDir() (string, error) {
	if s.cfg.Store.Dir != "" {
		return s.cfg.Store.Dir, nil
	}
	return store.EnsureGlobalDir()
}

func (s *session) openStore() (store.ReportStore, error) {
	var dir string
	if s.cfg.Store.Kind != store.KindMemory {
		d, err := s.dataDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return store.NewStore(s.cfg.Store.Kind, dir)
}

// record traces a completed analysis and saves it as a report unless saving
// is disabled. It returns the report ID, or "" when nothing was saved.
func (s *session) record(ctx context.Context, def *netdef.Definition, analysis string, params, summary map[string]any, result any, elapsed time.Duration) (string, error) {
	s.trace.Log(logging.Analysis{
		Analysis: analysis,
		Network:  def.Name,
		Elapsed:  elapsed,
		Params:   params,
		Summary:  summary,
		Result:   result,
	})
	s.logger.Debug("analysis complete", "analysis", analysis, "network", def.Name, "duration", elapsed)

	if s.noSave || !s.cfg.Store.Save {
		return "", nil
	}
	st, err := s.openStore()
	if err != nil {
		return "", fmt.Errorf("opening report store: %w", err)
	}
	defer st.Close()

	report, err := store.NewReport(def.Name, def.Fingerprint(), analysis, params, result, elapsed)
	if err != nil {
		return "", err
	}
	id, err := st.SaveReport(ctx, report)
	if err != nil {
		return "", err
	}
	s.logger.Debug("report saved", "id", id)
	return id, nil
}

// emit writes v as indented JSON with --json, otherwise calls text.
func (s *session) emit(v any, text func(w io.Writer)) error {
	if s.jsonOut {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(s.out)
	return nil
}

// loadNetwork resolves the network named by the global source flags.
func loadNetwork(cmd *cobra.Command) (*netdef.Definition, network.Network, error) {
	flags := cmd.Flags()
	file, _ := flags.GetString("network")
	name, _ := flags.GetString("name")
	hasRule := flags.Changed("rule")

	var def *netdef.Definition
	switch {
	case file != "" && hasRule:
		return nil, nil, neterr.Configf("--network and --rule are mutually exclusive")
	case file != "":
		d, err := netdef.Load(file, name)
		if err != nil {
			return nil, nil, err
		}
		def = d
	case hasRule:
		rule, _ := flags.GetInt("rule")
		size, _ := flags.GetInt("size")
		boundary, _ := flags.GetIntSlice("boundary")
		if size < 1 {
			return nil, nil, neterr.Configf("--rule needs --size of at least 1")
		}
		if name == "" {
			name = fmt.Sprintf("rule%d-n%d", rule, size)
		}
		if len(boundary) == 0 {
			boundary = nil
		}
		def = netdef.Rewired(name, rule, size, boundary)
	default:
		return nil, nil, neterr.Configf("no network given: use --network FILE or --rule CODE --size N")
	}

	if mode, _ := flags.GetString("randomize"); mode != "" {
		seed, _ := flags.GetUint64("seed")
		if !flags.Changed("seed") {
			seed = uint64(time.Now().UnixNano())
		}
		p, _ := flags.GetFloat64Slice("p")
		if len(p) == 0 {
			p = nil
		}
		d, err := def.Randomized(mode, seed, p)
		if err != nil {
			return nil, nil, err
		}
		def = d
	}

	net, err := def.Build()
	if err != nil {
		return nil, nil, err
	}
	return def, net, nil
}

// outcome is the JSON envelope of every analysis command.
type outcome[T any] struct {
	Network  string `json:"network"`
	Analysis string `json:"analysis"`
	ReportID string `json:"report_id,omitempty"`
	Result   T      `json:"result"`
}

// analysis describes one analysis command run.
type analysis[T any] struct {
	name    string
	params  map[string]any
	compute func(ctx context.Context, s *session, net network.Network) (T, map[string]any, error)
	text    func(w io.Writer, result T)
}

// run opens a session, loads the network, computes, records and prints.
func (a analysis[T]) run(cmd *cobra.Command) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	def, net, err := loadNetwork(cmd)
	if err != nil {
		return err
	}
	s.logger.Debug("network loaded", "network", def.Name, "size", net.Size())

	ctx := cmd.Context()
	start := time.Now()
	result, summary, err := a.compute(ctx, s, net)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	id, err := s.record(ctx, def, a.name, a.params, summary, result, elapsed)
	if err != nil {
		s.logger.Warn("report not saved", "error", err)
	}

	return s.emit(outcome[T]{Network: def.Name, Analysis: a.name, ReportID: id, Result: result}, func(w io.Writer) {
		a.text(w, result)
		if id != "" {
			fmt.Fprintf(w, "report: %s\n", id)
		}
	})
}
