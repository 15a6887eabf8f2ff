package api

import (
	"path/filepath"
	"sort"

	"clipper/internal/jobs"
	"clipper/internal/library"
	"clipper/internal/pipeline"
	"clipper/internal/stage"
)

// FromJob converts a job snapshot to its API representation.
func FromJob(job jobs.Job) JobResponse {
	dto := JobResponse{
		ID:       job.ID,
		Status:   jobStatusString(job),
		Source:   job.Source,
		UploadID: job.UploadID,
	}
	if job.Status == jobs.StatusDone {
		dto.Clips = make([]ClipView, 0, len(job.Clips))
		for _, clip := range job.Clips {
			dto.Clips = append(dto.Clips, fromClip(clip))
		}
	}
	if job.Status == jobs.StatusFailed {
		dto.Error = job.Error
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

func fromClip(clip jobs.Clip) ClipView {
	return ClipView{
		Path:           clip.Path,
		Filename:       filepath.Base(clip.Path),
		Title:          clip.Title,
		Score:          clip.Score,
		TranscriptText: clip.Excerpt,
		StartTime:      stage.FormatTimecode(clip.StartSeconds),
		EndTime:        stage.FormatTimecode(clip.EndSeconds),
	}
}

// jobStatusString renders the status field clients poll. In-flight jobs
// expose the stage progress string; everything else reports the bare
// status name.
func jobStatusString(job jobs.Job) string {
	if job.Status.IsProcessing() {
		return job.Progress.String()
	}
	return string(job.Status)
}

// FromJobs converts a job list, preserving order.
func FromJobs(list []jobs.Job) JobListResponse {
	out := JobListResponse{Jobs: make([]JobResponse, 0, len(list))}
	for _, job := range list {
		out.Jobs = append(out.Jobs, FromJob(job))
	}
	return out
}

// FromUpload converts a catalog upload to its listing representation.
func FromUpload(upload *library.Upload, clipCount int) UploadView {
	if upload == nil {
		return UploadView{}
	}
	view := UploadView{
		ID:              upload.ID,
		Title:           upload.Title,
		OriginalName:    upload.OriginalName,
		Path:            upload.Path,
		SizeBytes:       upload.SizeBytes,
		DurationSeconds: upload.DurationSeconds,
		HasTranscript:   upload.HasTranscript(),
		ClipCount:       clipCount,
		Thumbnail:       upload.ThumbnailPath,
	}
	if !upload.CreatedAt.IsZero() {
		view.CreatedAt = upload.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return view
}

// FromStatus converts the executor summary to the status payload.
func FromStatus(pid int, summary pipeline.StatusSummary) DaemonStatus {
	status := DaemonStatus{
		Running:    summary.Running,
		PID:        pid,
		Workers:    summary.Workers,
		QueueDepth: summary.QueueDepth,
		Jobs: JobStats{
			Total:      summary.Jobs.Total,
			Queued:     summary.Jobs.Queued,
			Processing: summary.Jobs.Processing,
			Done:       summary.Jobs.Done,
			Failed:     summary.Jobs.Failed,
		},
		Library: LibraryStats{
			Uploads:     summary.Library.Uploads,
			Clips:       summary.Library.Clips,
			Transcribed: summary.Library.Transcribed,
		},
	}
	if !summary.Started.IsZero() {
		status.Started = summary.Started.UTC().Format(dateTimeFormat)
	}

	names := make([]string, 0, len(summary.StageHealth))
	for name := range summary.StageHealth {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		health := summary.StageHealth[name]
		status.StageHealth = append(status.StageHealth, StageHealth{
			Name:   health.Name,
			Ready:  health.Ready,
			Detail: health.Detail,
		})
	}
	return status
}
