// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/nekomata/nekomata/app/dto"
	"github.com/nekomata/nekomata/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and tracing
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToCatDTO converts a cat model to its API representation. Tag names come
// from preloaded associations; an unloaded association yields an empty list,
// never nil.
func ToCatDTO(cat models.Cat) dto.CatDTO {
	tags := make([]string, 0, len(cat.CatTags))
	for _, ct := range cat.CatTags {
		if ct.Tag != nil {
			tags = append(tags, ct.Tag.Name)
		}
	}

	return dto.CatDTO{
		ID:         cat.ID,
		ExternalID: cat.ExternalID,
		Width:      cat.Width,
		Height:     cat.Height,
		Image:      cat.Image,
		Tags:       tags,
		CreatedAt:  cat.CreatedAt.Format(time.RFC3339),
	}
}
