package service

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// DefaultItemsPerPage is used when take is omitted.
	DefaultItemsPerPage = 20
	// MaxItemsPerPage is the largest accepted take.
	MaxItemsPerPage = 50
)

var takeRule = []validation.Rule{
	validation.Required.Error("must be greater than 0"),
	validation.Min(1).Error("must be greater than 0"),
	validation.Max(MaxItemsPerPage).Error("must be no greater than 50"),
}

// resolvePaging validates the optional paging arguments and applies defaults.
func resolvePaging(skip, take *int) (int, int, error) {
	errs := validation.Errors{}
	if skip != nil {
		errs["skip"] = validation.Validate(*skip, validation.Min(0).Error("must be no less than 0"))
	}
	if take != nil {
		errs["take"] = validation.Validate(*take, takeRule...)
	}
	if err := errs.Filter(); err != nil {
		return 0, 0, asValidationError(err)
	}

	s, t := 0, DefaultItemsPerPage
	if skip != nil {
		s = *skip
	}
	if take != nil {
		t = *take
	}
	return s, t, nil
}
