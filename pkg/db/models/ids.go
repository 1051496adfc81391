package models

import "github.com/google/uuid"

// assignID fills a zero primary key so rows can be inserted on databases
// without a gen_random_uuid() default (sqlite in tests and local runs).
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
