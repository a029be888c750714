package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskListingPhotosPurge removes every stored photo object of a deleted
// listing. Enqueued when the inline cleanup after a delete fails, so the
// orphaned objects get retried out of band.
const TaskListingPhotosPurge = "photos:purge_listing"

type ListingPhotosPurgePayload struct {
	ListingID string `json:"listingId"`
}

func NewListingPhotosPurgeTask(payload ListingPhotosPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskListingPhotosPurge, data, asynq.MaxRetry(10)), nil
}

func ParseListingPhotosPurgePayload(task *asynq.Task) (ListingPhotosPurgePayload, error) {
	var payload ListingPhotosPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ListingPhotosPurgePayload{}, err
	}
	return payload, nil
}
