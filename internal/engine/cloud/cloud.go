package cloud

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"avconverter/internal/engine"
	"avconverter/internal/fileutil"
	"avconverter/internal/services"
	"avconverter/internal/services/cloudapi"
)

// Engine converts files by delegating to the remote conversion service.
type Engine struct {
	client *cloudapi.Client
}

// New constructs the cloud engine around a configured API client.
func New(client *cloudapi.Client) (*Engine, error) {
	if client == nil {
		return nil, errors.New("cloud api client required")
	}
	return &Engine{client: client}, nil
}

// Type identifies the engine for dispatch and reporting.
func (e *Engine) Type() engine.Type {
	return engine.Cloud
}

// Convert drives one job through upload, remote conversion, and download,
// then moves the downloaded file into the requested output path. Progress
// is reported as coarse stage milestones since the remote service exposes
// no transfer-level progress.
func (e *Engine) Convert(ctx context.Context, req engine.Request, progress engine.ProgressFunc) error {
	job := cloudapi.NewJob()

	report(progress, engine.ProgressUpdate{
		Stage:   "Uploading",
		Percent: 5,
		Message: fmt.Sprintf("Uploading %s", filepath.Base(req.InputPath)),
	})
	if err := job.Transition(cloudapi.StateUploading); err != nil {
		return err
	}
	doc, err := e.client.Upload(ctx, req.InputPath)
	if err != nil {
		job.Fail(err.Error())
		return err
	}
	job.ID = doc.JobID()
	job.RemoteStatus = doc.Status
	if err := job.Transition(cloudapi.StateUploaded); err != nil {
		return err
	}

	report(progress, engine.ProgressUpdate{
		Stage:   "Converting",
		Percent: 35,
		Message: fmt.Sprintf("Waiting for job %s", job.ID),
	})
	if err := job.Transition(cloudapi.StateConverting); err != nil {
		return err
	}
	downloadURL, err := e.client.AwaitCompletion(ctx, job.ID)
	if err != nil {
		job.Fail(err.Error())
		return err
	}
	job.DownloadURL = downloadURL
	if err := job.Transition(cloudapi.StateReady); err != nil {
		return err
	}

	report(progress, engine.ProgressUpdate{
		Stage:   "Downloading",
		Percent: 70,
		Message: fmt.Sprintf("Downloading job %s", job.ID),
	})
	local, err := e.client.Download(ctx, downloadURL, filepath.Dir(req.OutputPath))
	if err != nil {
		job.Fail(err.Error())
		return err
	}
	if err := fileutil.MoveFile(local, req.OutputPath); err != nil {
		job.Fail(err.Error())
		return services.Wrap(services.ErrDownloadFailed, "cloud", "move", "place converted file", err)
	}
	if err := job.Transition(cloudapi.StateDownloaded); err != nil {
		return err
	}

	report(progress, engine.ProgressUpdate{Stage: "Downloading", Percent: 100, Message: "Download complete"})
	return nil
}

func report(progress engine.ProgressFunc, update engine.ProgressUpdate) {
	if progress != nil {
		progress(update)
	}
}
