package handlers

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/bewize/audio-generator/internal/middleware"
	"github.com/bewize/audio-generator/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrUnknownScript is returned for a missing or unrecognized --script value
	ErrUnknownScript = errors.New("unknown script")
	// ErrMissingLevel is returned when a script that needs --level is run without it
	ErrMissingLevel = errors.New("--level is required")
)

// PipelineService is the interface that wraps the narration runs
type PipelineService interface {
	// Method Run narrates every pending record of "kind" for "level" and optional "subject".
	//
	// The updated records are returned. An empty slice means nothing was pending.
	// The first aborted record stops the run and its error is returned together with "nil" value.
	Run(ctx context.Context, kind models.ContentKind, level, subject string) ([]models.ContentRecord, error)
	// Method All runs every content kind concurrently.
	//
	// Please reference Run method for more information about parameters and error values.
	All(ctx context.Context, level, subject string) (map[models.ContentKind][]models.ContentRecord, error)
}

// MaintenanceService is the interface that wraps the maintenance scripts
type MaintenanceService interface {
	// Method ClearAudio deletes every narration from storage and clears all audio references after confirmation.
	ClearAudio(ctx context.Context) (models.ClearAudioResult, error)
	// Method ClearQuizQuestions clears quiz question audio references of a level after confirmation.
	ClearQuizQuestions(ctx context.Context, level, subject string) (models.ClearQuizQuestionsResult, error)
	// Method UpdateStories uploads the stories catalogue at "path" and returns its URL.
	UpdateStories(ctx context.Context, path string) (string, error)
}

// ScriptHandler dispatches a script to the services
type ScriptHandler struct {
	BaseHandler
	pipeline    PipelineService
	maintenance MaintenanceService
	storiesPath string
}

// NewScriptHandler creates a new script handler writing its summary to out
func NewScriptHandler(pipeline PipelineService, maintenance MaintenanceService, storiesPath string, out io.Writer, logger *zap.Logger) *ScriptHandler {
	return &ScriptHandler{
		BaseHandler: BaseHandler{out: out, logger: logger},
		pipeline:    pipeline,
		maintenance: maintenance,
		storiesPath: storiesPath,
	}
}

// ParseArgs parses --script, --level and --subject
func ParseArgs(args []string, output io.Writer) (models.ScriptArgs, error) {
	var parsed models.ScriptArgs
	var script string

	fs := flag.NewFlagSet("audio-generator", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&script, "script", "", "script to run: "+scriptList())
	fs.StringVar(&parsed.Level, "level", "", "level name (required except for update/stories and clear/audio)")
	fs.StringVar(&parsed.Subject, "subject", "", "subject title filter (optional)")
	if err := fs.Parse(args); err != nil {
		return models.ScriptArgs{}, err
	}
	parsed.Script = models.Script(script)

	if err := ValidateArgs(parsed); err != nil {
		return models.ScriptArgs{}, err
	}
	return parsed, nil
}

// ValidateArgs checks the script name and the presence of the level
func ValidateArgs(args models.ScriptArgs) error {
	if !args.Script.Valid() {
		return fmt.Errorf("%w %q, valid scripts: %s", ErrUnknownScript, args.Script, scriptList())
	}
	if args.Script.RequiresLevel() && args.Level == "" {
		return fmt.Errorf("%w for script %s", ErrMissingLevel, args.Script)
	}
	return nil
}

func scriptList() string {
	names := make([]string, 0, len(models.Scripts()))
	for _, s := range models.Scripts() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// Handle runs the script described by args under a fresh run ID
func (h *ScriptHandler) Handle(ctx context.Context, args models.ScriptArgs) error {
	if err := ValidateArgs(args); err != nil {
		return err
	}

	ctx = middleware.WithRunID(ctx, "")
	log := h.logger.With(
		zap.String("run_id", middleware.GetRunID(ctx)),
		zap.String("script", string(args.Script)),
	)
	log.Info("running script", zap.String("level", args.Level), zap.String("subject", args.Subject))

	if err := middleware.Recover(ctx, log, func(ctx context.Context) error {
		return h.dispatch(ctx, args)
	}); err != nil {
		log.Error("script failed", zap.Error(err))
		return err
	}

	log.Info("script finished")
	return nil
}

func (h *ScriptHandler) dispatch(ctx context.Context, args models.ScriptArgs) error {
	if kind, ok := args.Script.ContentKind(); ok {
		records, err := h.pipeline.Run(ctx, kind, args.Level, args.Subject)
		if err != nil {
			return err
		}
		h.respond("%s: generated %d audio files", kind, len(records))
		return nil
	}

	switch args.Script {
	case models.ScriptAll:
		results, err := h.pipeline.All(ctx, args.Level, args.Subject)
		if err != nil {
			return err
		}
		total := 0
		for _, kind := range models.ContentKinds() {
			h.respond("%s: generated %d audio files", kind, len(results[kind]))
			total += len(results[kind])
		}
		h.respond("all: generated %d audio files", total)

	case models.ScriptUpdateStories:
		url, err := h.maintenance.UpdateStories(ctx, h.storiesPath)
		if err != nil {
			return err
		}
		h.respond("stories uploaded to %s", url)

	case models.ScriptClearAudio:
		result, err := h.maintenance.ClearAudio(ctx)
		if err != nil {
			return err
		}
		if result.Cancelled {
			h.respond("operation cancelled")
			return nil
		}
		if result.Initial.Total() == 0 {
			h.respond("no audio references to clear")
			return nil
		}
		h.respond("deleted %d of %d audio files", result.DeletedFiles, result.ReferencedURL)
		h.respond("remaining references: %d questions, %d feedbacks, %d answers",
			result.Remaining.Questions, result.Remaining.Feedbacks, result.Remaining.Answers)

	case models.ScriptClearQuizQuestions:
		result, err := h.maintenance.ClearQuizQuestions(ctx, args.Level, args.Subject)
		if err != nil {
			return err
		}
		if result.Cancelled {
			h.respond("operation cancelled")
			return nil
		}
		h.respond("cleared %d quiz question audio references", result.ClearedCount)
	}
	return nil
}
