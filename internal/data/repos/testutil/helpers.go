package testutil

import (
	"time"

	"github.com/google/uuid"
)

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
func PtrStr(v string) *string        { return &v }
func PtrInt(v int) *int              { return &v }
func PtrFloat(v float64) *float64    { return &v }
func PtrTime(v time.Time) *time.Time { return &v }
