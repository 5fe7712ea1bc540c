package cloudapi

import (
	"fmt"
	"strings"
)

// JobState is the local lifecycle state of one remote conversion.
type JobState string

const (
	StateCreated    JobState = "created"
	StateUploading  JobState = "uploading"
	StateUploaded   JobState = "uploaded"
	StateConverting JobState = "converting"
	StateReady      JobState = "ready"
	StateDownloaded JobState = "downloaded"
	StateFailed     JobState = "failed"
)

// transitions lists the forward moves a job may make. Failed is reachable
// from every live state; Downloaded and Failed are terminal.
var transitions = map[JobState][]JobState{
	StateCreated:    {StateUploading, StateFailed},
	StateUploading:  {StateUploaded, StateFailed},
	StateUploaded:   {StateConverting, StateFailed},
	StateConverting: {StateReady, StateFailed},
	StateReady:      {StateDownloaded, StateFailed},
	StateDownloaded: {},
	StateFailed:     {},
}

// Job tracks one remote conversion locally. The ID is assigned by the remote
// service on upload; RemoteStatus mirrors the last status string the service
// reported; DownloadURL is populated once the job is Ready.
type Job struct {
	ID           string
	RemoteStatus string
	DownloadURL  string

	state JobState
}

// NewJob returns a job in the Created state.
func NewJob() *Job {
	return &Job{state: StateCreated}
}

// State returns the job's current lifecycle state.
func (j *Job) State() JobState {
	return j.state
}

// Terminal reports whether the job can make no further transitions.
func (j *Job) Terminal() bool {
	return len(transitions[j.state]) == 0
}

// Transition moves the job forward. Backward moves and moves out of a
// terminal state are rejected.
func (j *Job) Transition(to JobState) error {
	for _, allowed := range transitions[j.state] {
		if allowed == to {
			j.state = to
			return nil
		}
	}
	if j.Terminal() {
		return fmt.Errorf("job %s is already %s", j.ID, j.state)
	}
	return fmt.Errorf("job %s cannot move from %s to %s", j.ID, j.state, to)
}

// Fail marks the job failed and records the remote detail. Calling Fail on a
// downloaded job is a no-op since its output is already durable.
func (j *Job) Fail(detail string) {
	if j.Terminal() {
		return
	}
	j.state = StateFailed
	if detail = strings.TrimSpace(detail); detail != "" {
		j.RemoteStatus = detail
	}
}
