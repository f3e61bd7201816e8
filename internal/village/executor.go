package village

import (
	"context"
	"fmt"

	"github.com/hamlet-bot/hamlet/internal/config"
	"github.com/hamlet-bot/hamlet/internal/media"
	"github.com/hamlet-bot/hamlet/internal/models"
	"github.com/hamlet-bot/hamlet/internal/queue"
)

// BaselineStore is the slice of baseline persistence the executor and
// service need.
type BaselineStore interface {
	Get(ctx context.Context, villageID string) (*models.VillageBaseline, error)
	Upsert(ctx context.Context, villageID, imageURL string) error
}

// Executor runs the provider call for each job kind. Baseline kinds are
// plain prompt-to-image calls; composites pull the village baseline and
// the parent job's artifact as visual references.
type Executor struct {
	repo      queue.JobRepo
	baselines BaselineStore
	gen       media.Generator
}

var _ queue.Executor = (*Executor)(nil)

func NewExecutor(repo queue.JobRepo, baselines BaselineStore, gen media.Generator) *Executor {
	return &Executor{repo: repo, baselines: baselines, gen: gen}
}

func (e *Executor) Execute(ctx context.Context, job *models.Job) ([]byte, error) {
	switch job.Kind {
	case config.KindAvatarBaseline:
		artifact, err := e.generate(ctx, job, nil)
		if err != nil {
			return nil, err
		}
		return media.EncodeResult(job.Kind, media.AvatarResult{Artifact: artifact})

	case config.KindVillageBaseline:
		artifact, err := e.generate(ctx, job, nil)
		if err != nil {
			return nil, err
		}
		return media.EncodeResult(job.Kind, media.VillageResult{Artifact: artifact})

	case config.KindObjectBaseline:
		artifact, err := e.generate(ctx, job, nil)
		if err != nil {
			return nil, err
		}
		return media.EncodeResult(job.Kind, media.ObjectResult{Artifact: artifact, Label: job.Command})

	case config.KindVillageComposite:
		refs, generation, err := e.compositeReferences(ctx, job)
		if err != nil {
			return nil, err
		}
		artifact, err := e.generate(ctx, job, refs)
		if err != nil {
			return nil, err
		}
		return media.EncodeResult(job.Kind, media.CompositeResult{
			Artifact:   artifact,
			VillageID:  job.VillageID,
			Generation: generation,
		})

	default:
		return nil, media.Permanent("unknown job kind %q", job.Kind)
	}
}

func (e *Executor) generate(ctx context.Context, job *models.Job, refs []string) (media.Artifact, error) {
	artifact, err := e.gen.Generate(ctx, media.GenerateRequest{
		Kind:      job.Kind,
		Prompt:    job.Prompt,
		OwnerID:   job.OwnerID,
		Reference: refs,
	})
	if err != nil {
		return media.Artifact{}, fmt.Errorf("generate %s: %w", job.Kind, err)
	}
	if artifact.URL == "" {
		// Empty generations are transient; the provider sometimes
		// returns nothing under load.
		return media.Artifact{}, fmt.Errorf("generate %s: provider returned no artifact", job.Kind)
	}
	return artifact, nil
}

// compositeReferences collects the visual continuity inputs: the current
// village baseline, plus the parent job's artifact when the composite is
// chained behind an object generation.
func (e *Executor) compositeReferences(ctx context.Context, job *models.Job) ([]string, int, error) {
	baseline, err := e.baselines.Get(ctx, job.VillageID)
	if err != nil {
		return nil, 0, err
	}
	if baseline == nil {
		return nil, 0, media.Permanent("village %s has no baseline image", job.VillageID)
	}
	refs := []string{baseline.ImageURL}

	if job.ParentJobID != nil {
		parent, err := e.repo.Get(ctx, *job.ParentJobID)
		if err != nil {
			return nil, 0, media.Permanent("parent job %d no longer exists", *job.ParentJobID)
		}
		var obj media.ObjectResult
		if err := media.DecodeResult(config.KindObjectBaseline, parent.Result, &obj); err != nil {
			return nil, 0, media.Permanent("parent job %d result unreadable: %v", parent.ID, err)
		}
		refs = append(refs, obj.Artifact.URL)
	}

	return refs, baseline.Generation + 1, nil
}
