package hotels

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
)

const (
	dateLayout = "2006-01-02"
	maxNights  = 30
	maxRooms   = 9
	maxAdults  = 8
	maxKids    = 4
)

var (
	ErrInvalidSearch = errors.New("invalid search")
	countryRe        = regexp.MustCompile(`^[A-Z]{2}$`)
)

// SearchInput is the hotel availability query.
type SearchInput struct {
	LocationID  string          `json:"locationId" binding:"required"`
	CheckIn     string          `json:"checkIn" binding:"required"`
	CheckOut    string          `json:"checkOut" binding:"required"`
	Rooms       []supplier.Room `json:"rooms" binding:"required"`
	Nationality string          `json:"nationality"`
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidSearch, fmt.Sprintf(format, args...))
}

// Normalize validates in against today's date and fills defaults.
func (in SearchInput) Normalize(today time.Time) (SearchInput, error) {
	in.LocationID = strings.TrimSpace(in.LocationID)
	if in.LocationID == "" {
		return in, invalid("locationId is required")
	}
	checkIn, err := time.Parse(dateLayout, in.CheckIn)
	if err != nil {
		return in, invalid("checkIn must be YYYY-MM-DD")
	}
	checkOut, err := time.Parse(dateLayout, in.CheckOut)
	if err != nil {
		return in, invalid("checkOut must be YYYY-MM-DD")
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(day) {
		return in, invalid("checkIn is in the past")
	}
	if !checkOut.After(checkIn) {
		return in, invalid("checkOut must be after checkIn")
	}
	if nights := int(checkOut.Sub(checkIn).Hours() / 24); nights > maxNights {
		return in, invalid("stay cannot exceed %d nights", maxNights)
	}
	if len(in.Rooms) < 1 || len(in.Rooms) > maxRooms {
		return in, invalid("between 1 and %d rooms are required", maxRooms)
	}
	for i, r := range in.Rooms {
		if r.Adults < 1 || r.Adults > maxAdults {
			return in, invalid("room %d needs 1 to %d adults", i+1, maxAdults)
		}
		if r.Children < 0 || r.Children > maxKids {
			return in, invalid("room %d allows at most %d children", i+1, maxKids)
		}
		if len(r.ChildAges) != r.Children {
			return in, invalid("room %d: childAges must list %d ages", i+1, r.Children)
		}
		for _, age := range r.ChildAges {
			if age < 0 || age > 17 {
				return in, invalid("room %d: child age %d out of range", i+1, age)
			}
		}
	}
	in.Nationality = strings.ToUpper(strings.TrimSpace(in.Nationality))
	if in.Nationality == "" {
		in.Nationality = "IN"
	}
	if !countryRe.MatchString(in.Nationality) {
		return in, invalid("nationality must be an ISO country code")
	}
	return in, nil
}

// Nights is the stay length of a normalized input.
func (in SearchInput) Nights() int {
	a, _ := time.Parse(dateLayout, in.CheckIn)
	b, _ := time.Parse(dateLayout, in.CheckOut)
	return int(b.Sub(a).Hours() / 24)
}
