package ports

import "context"

// MediaCategory tells the pipeline which aggregate a job's files belong to.
type MediaCategory string

const (
	MediaCategoryProfile MediaCategory = "profile"
	MediaCategoryCar     MediaCategory = "car"
)

// MediaFile is one uploaded file awaiting compression.
type MediaFile struct {
	Path     string
	MimeType string
}

// MediaJob is the outbound descriptor handed to the compression worker
// boundary. Submission is fire-and-forget; the request path never waits on
// it.
type MediaJob struct {
	OwnerID         string
	TargetID        string // profile id or car id, per Category
	Files           []MediaFile
	DestinationPath string
	Category        MediaCategory
}

// MediaDispatcher is the submission side of the worker boundary.
type MediaDispatcher interface {
	Submit(job MediaJob)
}

// MediaProcessor consumes jobs on the worker side and performs the
// idempotent media-URL callbacks when compression completes.
type MediaProcessor interface {
	Process(ctx context.Context, job MediaJob) error
}

// StorageCleaner removes uploaded artifacts, best-effort.
type StorageCleaner interface {
	DeleteFile(path string)
	DeleteTree(path string)
}
