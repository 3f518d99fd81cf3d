package api

import (
	"context"
	"net/url"

	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/model"
)

const jobsPath = "jobs"

// ListJobs returns the job board, or only the caller's postings when
// filter.Mine is set.
func (a *API) ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error) {
	var q url.Values
	if filter.Mine {
		q = url.Values{"my_jobs": {"true"}}
	}

	var out []model.Job
	if err := a.get(ctx, jobsPath+"/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateJob posts a job. Only alumni may; students get 400.
func (a *API) CreateJob(ctx context.Context, in model.JobInput) (*model.Job, error) {
	var out model.Job
	if err := a.post(ctx, jobsPath+"/", apiclient.JSON(in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) UpdateJob(ctx context.Context, id int64, fields model.JobUpdate) (*model.Job, error) {
	var out model.Job
	if err := a.patch(ctx, itemPath(jobsPath, id), apiclient.JSON(fields), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteJob(ctx context.Context, id int64) error {
	return a.delete(ctx, itemPath(jobsPath, id))
}
