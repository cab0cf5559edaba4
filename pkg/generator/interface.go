package generator

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/generator/emit"
	"github.com/blimu-dev/hookgen/pkg/generator/golang"
	"github.com/blimu-dev/hookgen/pkg/generator/reactquery"
	"github.com/blimu-dev/hookgen/pkg/generator/swr"
	"github.com/blimu-dev/hookgen/pkg/generator/typescript"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/openapi"
)

// Emitter turns a finished IR into files. Emitters must not modify the IR:
// several of them read the same one concurrently.
type Emitter interface {
	// GetType returns the type identifier for this emitter (e.g., "typescript")
	GetType() string
	// Capabilities reports which kinds of output the emitter produces.
	Capabilities() emit.Capability
	// Emit renders every file for client. Paths are relative to client.OutDir.
	Emit(client config.Client, in *ir.IR) ([]emit.File, error)
}

// Registry manages available emitters
type Registry struct {
	emitters map[string]Emitter
}

// NewRegistry creates a new emitter registry
func NewRegistry() *Registry {
	return &Registry{
		emitters: make(map[string]Emitter),
	}
}

// Register adds an emitter to the registry
func (r *Registry) Register(e Emitter) {
	r.emitters[e.GetType()] = e
}

// Get retrieves an emitter by type
func (r *Registry) Get(genType string) (Emitter, bool) {
	e, exists := r.emitters[genType]
	return e, exists
}

// GetAvailableTypes returns all registered emitter types, sorted
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.emitters))
	for t := range r.emitters {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultRegistry returns a registry holding every built-in emitter.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(typescript.NewTypeScriptGenerator())
	registry.Register(reactquery.NewReactQueryGenerator())
	registry.Register(swr.NewSWRGenerator())
	registry.Register(golang.NewGoGenerator())
	return registry
}

// GenerateOptions contains options for client generation
type GenerateOptions struct {
	ConfigPath   string
	SingleClient string
	Fallback     FallbackOptions
}

// FallbackOptions contains fallback options when no config file is provided
type FallbackOptions struct {
	Spec        string
	Type        string
	OutDir      string
	PackageName string
	Name        string
	Version     string
	IncludeTags []string
	ExcludeTags []string
}

// DefaultCacheSize bounds the number of built IRs a Service keeps.
const DefaultCacheSize = 16

// Service loads documents, builds their IR and runs emitters over it.
type Service struct {
	registry *Registry
	logger   *slog.Logger
	cache    *lru.Cache[[sha256.Size]byte, *ir.IR]
	stdout   io.Writer
	stderr   io.Writer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry replaces the built-in emitters.
func WithRegistry(r *Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithCacheSize sets how many built IRs are kept, keyed by document bytes.
// A size below one disables the cache.
func WithCacheSize(n int) Option {
	return func(s *Service) {
		if n < 1 {
			s.cache = nil
			return
		}
		s.cache, _ = lru.New[[sha256.Size]byte, *ir.IR](n)
	}
}

// WithCommandOutput sets where pre and post commands write.
func WithCommandOutput(stdout, stderr io.Writer) Option {
	return func(s *Service) {
		s.stdout, s.stderr = stdout, stderr
	}
}

// NewService creates a new generator service with default emitters
func NewService(opts ...Option) *Service {
	cache, _ := lru.New[[sha256.Size]byte, *ir.IR](DefaultCacheSize)
	s := &Service{
		registry: DefaultRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:    cache,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceWithRegistry creates a new generator service with a custom registry
func NewServiceWithRegistry(registry *Registry) *Service {
	return NewService(WithRegistry(registry))
}

// GetRegistry returns the emitter registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// Generate generates clients based on the provided options
func (s *Service) Generate(opts GenerateOptions) error {
	var cfg *config.Config
	var err error

	if opts.ConfigPath == "" {
		if opts.Fallback.Spec == "" || opts.Fallback.Type == "" ||
			opts.Fallback.OutDir == "" || opts.Fallback.PackageName == "" ||
			opts.Fallback.Name == "" {
			return fmt.Errorf("either config path or all fallback options must be provided")
		}
		outDir, err := filepath.Abs(opts.Fallback.OutDir)
		if err != nil {
			return err
		}
		client := config.Client{
			Type:        opts.Fallback.Type,
			OutDir:      outDir,
			PackageName: opts.Fallback.PackageName,
			Name:        opts.Fallback.Name,
			Version:     opts.Fallback.Version,
			IncludeTags: opts.Fallback.IncludeTags,
			ExcludeTags: opts.Fallback.ExcludeTags,
		}
		if err := client.Validate(); err != nil {
			return err
		}
		cfg = &config.Config{Spec: opts.Fallback.Spec, Clients: []config.Client{client}}
	} else {
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
	}

	return s.GenerateFromConfig(cfg, opts.SingleClient)
}

// job is one client's emitter run.
type job struct {
	client  config.Client
	emitter Emitter
	in      *ir.IR
	files   []emit.File
}

// GenerateFromConfig generates clients from a configuration. Emitters of all
// selected clients run in parallel over the shared IR; files are written and
// commands run one client at a time afterwards.
func (s *Service) GenerateFromConfig(cfg *config.Config, onlyClient string) error {
	doc, err := openapi.LoadDocument(cfg.Spec)
	if err != nil {
		return err
	}
	fullIR, err := s.BuildIR(doc)
	if err != nil {
		return err
	}

	var jobs []*job
	for _, client := range cfg.Clients {
		if onlyClient != "" && client.Name != onlyClient {
			continue
		}
		e, exists := s.registry.Get(client.Type)
		if !exists {
			return fmt.Errorf("unsupported client type: %s", client.Type)
		}
		filtered, err := filterIR(fullIR, client)
		if err != nil {
			return err
		}
		jobs = append(jobs, &job{client: client, emitter: e, in: filtered})
	}
	if onlyClient != "" && len(jobs) == 0 {
		return fmt.Errorf("client %q not found in config", onlyClient)
	}

	// Pre-commands may prepare the output directory, so they run first.
	for _, j := range jobs {
		if err := os.MkdirAll(j.client.OutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory for client %s: %w", j.client.Name, err)
		}
		if err := s.executePreCommands(j.client); err != nil {
			return fmt.Errorf("pre-generation commands failed for client %s: %w", j.client.Name, err)
		}
	}

	g, _ := errgroup.WithContext(context.Background())
	for _, j := range jobs {
		g.Go(func() error {
			files, err := j.emitter.Emit(j.client, j.in)
			if err != nil {
				return fmt.Errorf("emitter %s failed for client %s: %w", j.emitter.GetType(), j.client.Name, err)
			}
			j.files = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, j := range jobs {
		written, err := writeFiles(j.client, j.files)
		if err != nil {
			return err
		}
		s.logger.Info("generated client",
			"client", j.client.Name,
			"type", j.client.Type,
			"capabilities", j.emitter.Capabilities().String(),
			"operations", len(j.in.Operations),
			"files", written)
		if err := s.executePostGenCommands(j.client); err != nil {
			return fmt.Errorf("post-generation commands failed for client %s: %w", j.client.Name, err)
		}
	}
	return nil
}

// executePreCommands executes the pre-generation command for a client
func (s *Service) executePreCommands(client config.Client) error {
	command := client.GetPreCommand()
	if len(command) == 0 {
		return nil
	}
	return s.executeCommand(command, client.OutDir, "pre-command")
}

// executePostGenCommands executes the post-generation command for a client
func (s *Service) executePostGenCommands(client config.Client) error {
	command := client.GetPostCommand()
	if len(command) == 0 {
		return nil
	}
	return s.executeCommand(command, client.OutDir, "post-command")
}

// executeCommand executes a single command in Docker Compose array format
func (s *Service) executeCommand(command []string, workDir, commandLabel string) error {
	if len(command) == 0 {
		return nil
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr

	cmdDescription := strings.Join(command, " ")
	s.logger.Debug("running command", "label", commandLabel, "command", cmdDescription, "dir", workDir)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", commandLabel, cmdDescription, err)
	}
	return nil
}
