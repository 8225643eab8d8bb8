package importer

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/jengzang/routesync/internal/models"
)

// semicircles per degree (2^31 / 180)
const semicircleConst = 11930464.7111

// invalid sint32 marks a record without a position fix
const invalidPosition = 0x7FFFFFFF

// ErrEmptyFile is returned for zero-length input
var ErrEmptyFile = errors.New("empty FIT data")

// ErrNotFIT is returned when no FIT sequence could be decoded
var ErrNotFIT = errors.New("no FIT data found")

// RouteNamespace seeds deterministic route ids so re-importing a file
// updates the same workout
var RouteNamespace = uuid.MustParse("5b0c4f0e-7a8e-4d3c-9a51-2f7f3a1d8c42")

// ParseFIT decodes an activity file into a route. Records without a GPS
// fix are skipped; a file with none yields a route with no samples.
func ParseFIT(data []byte) (models.RouteRecord, error) {
	if len(data) == 0 {
		return models.RouteRecord{}, ErrEmptyFile
	}

	route := models.RouteRecord{
		ID:           uuid.NewSHA1(RouteNamespace, data),
		ActivityType: models.ActivityOther,
	}
	var (
		sessionStart time.Time
		created      time.Time
		firstRecord  time.Time
		sportSet     bool
		decoded      int
	)

	dec := decoder.New(bytes.NewReader(data))
	for dec.Next() {
		fitData, err := dec.Decode()
		if err != nil {
			return models.RouteRecord{}, fmt.Errorf("failed to decode FIT file: %w", err)
		}
		decoded++

		for _, msg := range fitData.Messages {
			switch msg.Num {
			case typedef.MesgNumFileId:
				fileID := mesgdef.NewFileId(&msg)
				if created.IsZero() && !fileID.TimeCreated.IsZero() {
					created = fileID.TimeCreated.UTC()
				}

			case typedef.MesgNumRecord:
				record := mesgdef.NewRecord(&msg)
				if firstRecord.IsZero() && !record.Timestamp.IsZero() {
					firstRecord = record.Timestamp.UTC()
				}
				if record.PositionLat == invalidPosition || record.PositionLong == invalidPosition {
					continue
				}
				route.Samples = append(route.Samples, models.Sample{
					Lat: float64(record.PositionLat) / semicircleConst,
					Lon: float64(record.PositionLong) / semicircleConst,
				})

			case typedef.MesgNumSession:
				session := mesgdef.NewSession(&msg)
				if sessionStart.IsZero() && !session.StartTime.IsZero() {
					sessionStart = session.StartTime.UTC()
				}
				if !sportSet {
					route.ActivityType = activityFromSport(session.Sport)
					sportSet = true
				}
				if route.Name == "" && session.SportProfileName != "" {
					route.Name = session.SportProfileName
				}
			}
		}
	}

	if decoded == 0 {
		return models.RouteRecord{}, ErrNotFIT
	}

	switch {
	case !sessionStart.IsZero():
		route.StartTimestamp = sessionStart
	case !created.IsZero():
		route.StartTimestamp = created
	default:
		route.StartTimestamp = firstRecord
	}
	return route, nil
}

func activityFromSport(sport typedef.Sport) models.ActivityType {
	switch sport {
	case typedef.SportRunning:
		return models.ActivityRunning
	case typedef.SportCycling:
		return models.ActivityCycling
	case typedef.SportWalking, typedef.SportHiking:
		return models.ActivityWalking
	default:
		return models.ActivityOther
	}
}
