package ids

import (
	"strings"

	"github.com/google/uuid"
)

// Generator issues opaque, prefixed identifiers such as "appt_1a2b3c4d5e6f".
type Generator interface {
	NewID(prefix string) string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns a Generator backed by random UUIDs.
func NewUUIDGenerator() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + hex[:12]
}

const (
	PrefixAppointment = "appt"
	PrefixUser        = "user"
	PrefixLog         = "log"
	PrefixTask        = "task"
	PrefixBranch      = "branch"
	PrefixSession     = "sess"
)
