// Package village turns chat commands into generation job chains and
// bridges their eventual results back to the adapters.
package village

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamlet-bot/hamlet/internal/bridge"
	"github.com/hamlet-bot/hamlet/internal/config"
	"github.com/hamlet-bot/hamlet/internal/dto"
	"github.com/hamlet-bot/hamlet/internal/media"
	"github.com/hamlet-bot/hamlet/internal/models"
	"github.com/hamlet-bot/hamlet/internal/queue"
)

// Ack is the immediate reply plus the pending follow-up work. The
// adapter sends Text right away, then awaits Work and relays whatever
// it yields.
type Ack struct {
	Text string
	Work *bridge.Handle
}

type Service struct {
	repo      queue.JobRepo
	baselines BaselineStore
	gen       media.Generator
	kicker    queue.Kicker
	watcher   bridge.Watcher
	cfg       *config.QueueConfig
	log       *zap.Logger
	validate  *validator.Validate
}

func NewService(
	repo queue.JobRepo,
	baselines BaselineStore,
	gen media.Generator,
	kicker queue.Kicker,
	watcher bridge.Watcher,
	cfg *config.QueueConfig,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		baselines: baselines,
		gen:       gen,
		kicker:    kicker,
		watcher:   watcher,
		cfg:       cfg,
		log:       log,
		validate:  validator.New(),
	}
}

func (s *Service) pollOpts() bridge.PollOptions {
	return bridge.PollOptions{Interval: s.cfg.PollInterval, Timeout: s.cfg.PollTimeout}
}

// NewVillage enqueues a village baseline generation. The handle persists
// the baseline once the job completes, so later composites have a
// reference image.
func (s *Service) NewVillage(ctx context.Context, req *dto.NewVillageRequest) (*Ack, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid new-village request: %w", err)
	}

	villageID := uuid.NewString()
	job := &models.Job{
		OwnerID:     req.OwnerID,
		VillageID:   villageID,
		Command:     "village",
		Prompt:      villagePrompt(req.Name),
		Kind:        config.KindVillageBaseline,
		Priority:    config.PriorityInteractive,
		MaxAttempts: config.DefaultMaxAttempts,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	s.kicker.Kick()

	handle := bridge.Poll(ctx, s.repo, s.watcher, job.ID, s.pollOpts(), s.log,
		func(ctx context.Context, done *models.Job) (bridge.AsyncWorkResult, error) {
			var res media.VillageResult
			if err := media.DecodeResult(config.KindVillageBaseline, done.Result, &res); err != nil {
				return bridge.AsyncWorkResult{}, err
			}
			if err := s.baselines.Upsert(ctx, villageID, res.Artifact.URL); err != nil {
				return bridge.AsyncWorkResult{}, err
			}
			return bridge.AsyncWorkResult{
				Artifacts: []media.Artifact{res.Artifact},
				Message:   fmt.Sprintf("Welcome to %s! Your village is ready.", req.Name),
				NotifyIDs: []string{req.OwnerID},
			}, nil
		})

	return &Ack{
		Text: fmt.Sprintf("Founding %s... I'll show you around once it's drawn.", req.Name),
		Work: handle,
	}, nil
}

// Plant enqueues a crop baseline chained to a village composite. The
// composite stays blocked until the crop image exists, and the handle
// follows the composite — the user-visible end of the chain.
func (s *Service) Plant(ctx context.Context, req *dto.PlantRequest) (*Ack, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid plant request: %w", err)
	}
	return s.enqueueCompositeChain(ctx, chainInput{
		ownerID:      req.OwnerID,
		villageID:    req.VillageID,
		command:      "plant",
		objectPrompt: cropPrompt(req.Crop),
		subject:      fmt.Sprintf("a planted %s", req.Crop),
		ackText:      fmt.Sprintf("Planting %s! A fresh view of the village is on its way.", req.Crop),
		doneText:     fmt.Sprintf("Your %s is in the ground — look how the village has grown!", req.Crop),
	})
}

// Build is the same chain shape as Plant with structure prompts.
func (s *Service) Build(ctx context.Context, req *dto.BuildRequest) (*Ack, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid build request: %w", err)
	}
	return s.enqueueCompositeChain(ctx, chainInput{
		ownerID:      req.OwnerID,
		villageID:    req.VillageID,
		command:      "build",
		objectPrompt: structurePrompt(req.Structure),
		subject:      fmt.Sprintf("a new %s", req.Structure),
		ackText:      fmt.Sprintf("Raising a %s! A fresh view of the village is on its way.", req.Structure),
		doneText:     fmt.Sprintf("The %s is finished — come see it!", req.Structure),
	})
}

// Water enqueues a single composite with no parent: a re-render of the
// existing baseline after rain.
func (s *Service) Water(ctx context.Context, req *dto.WaterRequest) (*Ack, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid water request: %w", err)
	}

	job := &models.Job{
		OwnerID:     req.OwnerID,
		VillageID:   req.VillageID,
		Command:     "water",
		Prompt:      wateredPrompt(),
		Kind:        config.KindVillageComposite,
		Priority:    config.PriorityNormal,
		MaxAttempts: config.DefaultMaxAttempts,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	s.kicker.Kick()

	handle := s.compositeHandle(ctx, job.ID, "The crops drink deep — the village looks fresher already!", req.OwnerID)
	return &Ack{Text: "Watering the fields...", Work: handle}, nil
}

// Avatar is the direct-async shape: no queue row at all, the handle
// awaits the provider call itself. Used for latency-sensitive work that
// has no dependents.
func (s *Service) Avatar(ctx context.Context, req *dto.AvatarRequest) (*Ack, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid avatar request: %w", err)
	}

	handle := bridge.Direct(ctx, s.log, func(ctx context.Context) (bridge.AsyncWorkResult, error) {
		artifact, err := s.gen.Generate(ctx, media.GenerateRequest{
			Kind:    config.KindAvatarBaseline,
			Prompt:  avatarPrompt(req.Description),
			OwnerID: req.OwnerID,
		})
		if err != nil {
			return bridge.AsyncWorkResult{}, err
		}
		return bridge.AsyncWorkResult{
			Artifacts: []media.Artifact{artifact},
			Message:   "Here's your villager!",
			NotifyIDs: []string{req.OwnerID},
		}, nil
	})

	return &Ack{Text: "Sketching your villager...", Work: handle}, nil
}

type chainInput struct {
	ownerID      string
	villageID    string
	command      string
	objectPrompt string
	subject      string
	ackText      string
	doneText     string
}

func (s *Service) enqueueCompositeChain(ctx context.Context, in chainInput) (*Ack, error) {
	object := &models.Job{
		OwnerID:     in.ownerID,
		VillageID:   in.villageID,
		Command:     in.command,
		Prompt:      in.objectPrompt,
		Kind:        config.KindObjectBaseline,
		Priority:    config.PriorityNormal,
		MaxAttempts: config.DefaultMaxAttempts,
	}
	if err := s.repo.Create(ctx, object); err != nil {
		return nil, err
	}

	composite := &models.Job{
		OwnerID:     in.ownerID,
		VillageID:   in.villageID,
		Command:     in.command,
		Prompt:      compositePrompt(in.subject),
		Kind:        config.KindVillageComposite,
		Priority:    config.PriorityBackground,
		MaxAttempts: config.DefaultMaxAttempts,
		ParentJobID: &object.ID,
	}
	if err := s.repo.Create(ctx, composite); err != nil {
		return nil, err
	}
	s.kicker.Kick()

	s.log.Info("enqueued composite chain",
		zap.String("command", in.command),
		zap.Uint("object_job", object.ID),
		zap.Uint("composite_job", composite.ID),
		zap.String("village", in.villageID),
	)

	handle := s.compositeHandle(ctx, composite.ID, in.doneText, in.ownerID)
	return &Ack{Text: in.ackText, Work: handle}, nil
}

// compositeHandle resolves with the composite's artifact and persists it
// as the new village baseline.
func (s *Service) compositeHandle(ctx context.Context, jobID uint, doneText, ownerID string) *bridge.Handle {
	return bridge.Poll(ctx, s.repo, s.watcher, jobID, s.pollOpts(), s.log,
		func(ctx context.Context, done *models.Job) (bridge.AsyncWorkResult, error) {
			var res media.CompositeResult
			if err := media.DecodeResult(config.KindVillageComposite, done.Result, &res); err != nil {
				return bridge.AsyncWorkResult{}, err
			}
			if err := s.baselines.Upsert(ctx, res.VillageID, res.Artifact.URL); err != nil {
				return bridge.AsyncWorkResult{}, err
			}
			return bridge.AsyncWorkResult{
				Artifacts: []media.Artifact{res.Artifact},
				Message:   doneText,
				NotifyIDs: []string{ownerID},
			}, nil
		})
}
