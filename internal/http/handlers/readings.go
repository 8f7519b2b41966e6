package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"meterlog/internal/meter"
)

// readingJSON is the wire shape of a reading. The duplicated id (washId) and
// the username alias exist for compatibility with clients of the original
// deployment and must not change.
type readingJSON struct {
	WashID        string         `json:"washId"`
	ID            string         `json:"id"`
	CreatedBy     string         `json:"createdBy"`
	OwnerUsername string         `json:"ownerUsername"`
	OnBehalf      bool           `json:"onBehalf"`
	Username      string         `json:"username"`
	StartKWh      float64        `json:"startKWh"`
	EndKWh        float64        `json:"endKWh"`
	DeltaKWh      float64        `json:"deltaKWh"`
	Notes         string         `json:"notes"`
	Timestamp     int64          `json:"timestamp"`
	GlobalPK      string         `json:"GlobalPK"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}

func toReadingJSON(r meter.Reading) readingJSON {
	return readingJSON{
		WashID:        r.ID,
		ID:            r.ID,
		CreatedBy:     r.CreatedBy,
		OwnerUsername: r.OwnerUsername,
		OnBehalf:      r.OnBehalf,
		Username:      r.EffectiveOwner(),
		StartKWh:      r.StartKWh,
		EndKWh:        r.EndKWh,
		DeltaKWh:      r.DeltaKWh,
		Notes:         r.Notes,
		Timestamp:     r.TimestampMs,
		GlobalPK:      meter.GlobalPK,
		Attributes:    r.Attributes,
	}
}

// Username reports the current principal.
func Username() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		p, ok := MustPrincipal(ctx)
		if !ok {
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{"username": p.Username})
	}
}

// ListReadings returns the readings in the selected year/month window,
// newest first. No readings is an empty array, not an error.
func ListReadings(svc *meter.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustPrincipal(ctx); !ok {
			return
		}

		readings, err := svc.List(ctx,
			string(ctx.QueryArgs().Peek("year")),
			string(ctx.QueryArgs().Peek("month")))
		if err != nil {
			serviceError(ctx, err)
			return
		}

		out := make([]readingJSON, 0, len(readings))
		for _, r := range readings {
			out = append(out, toReadingJSON(r))
		}
		jsonResponse(ctx, fasthttp.StatusOK, out)
	}
}

type createReadingRequest struct {
	CurrentKWh  *float64       `json:"currentKWh"`
	Notes       string         `json:"notes"`
	ForUsername string         `json:"forUsername"`
	PreviousID  string         `json:"previousId"`
	Attributes  map[string]any `json:"attributes"`
}

// CreateReading records a new meter value for the principal (or on behalf of
// another household member).
func CreateReading(svc *meter.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		p, ok := MustPrincipal(ctx)
		if !ok {
			return
		}

		var req createReadingRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body", err)
			return
		}
		if req.CurrentKWh == nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "currentKWh is required", nil)
			return
		}

		reading, err := svc.Create(ctx, p.Username, meter.CreateInput{
			CurrentKWh:  *req.CurrentKWh,
			Notes:       req.Notes,
			ForUsername: req.ForUsername,
			PreviousID:  req.PreviousID,
			Attributes:  req.Attributes,
		})
		if err != nil {
			serviceError(ctx, err)
			return
		}

		observeReadingCreated(reading)
		jsonResponse(ctx, fasthttp.StatusCreated, map[string]any{"reading": toReadingJSON(*reading)})
	}
}

// LatestKWh reports the cumulative value of the most recent reading, 0 when
// the store is empty.
func LatestKWh(svc *meter.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustPrincipal(ctx); !ok {
			return
		}

		latest, err := svc.LatestKWh(ctx)
		if err != nil {
			serviceError(ctx, err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{"latestEndKWh": latest})
	}
}

// ReadingDetail returns one reading; only its creator or effective owner may
// view it.
func ReadingDetail(svc *meter.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		p, ok := MustPrincipal(ctx)
		if !ok {
			return
		}
		id, ok := pathID(ctx)
		if !ok {
			return
		}

		reading, err := svc.Get(ctx, id, p.Username)
		if err != nil {
			serviceError(ctx, err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, toReadingJSON(*reading))
	}
}

// DeleteReading removes a reading. A 403 here is a normal outcome: the
// record exists but the principal did not create it.
func DeleteReading(svc *meter.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		p, ok := MustPrincipal(ctx)
		if !ok {
			return
		}
		id, ok := pathID(ctx)
		if !ok {
			return
		}

		if err := svc.Delete(ctx, id, p.Username); err != nil {
			serviceError(ctx, err)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	}
}
