package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mkowalczyk/triplog/internal/domain"
)

type dayWeatherResponse struct {
	Date        string   `json:"date"`
	Available   bool     `json:"available"`
	Temperature *float64 `json:"temperature,omitempty"`
	Description *string  `json:"description,omitempty"`
	Icon        *string  `json:"icon,omitempty"`
}

// WeatherPreview handles GET /weather.
// Query parameters: lat, lon, start and end (yyyy-mm-dd). The response has
// one entry per day of the range; days past the forecast horizon are marked
// unavailable rather than omitted.
func (s *Server) WeatherPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
	if err1 != nil || err2 != nil {
		writeBadRequest(w, "lat and lon must be decimal coordinates")
		return
	}
	start, err1 := time.Parse(domain.DateLayout, q.Get("start"))
	end, err2 := time.Parse(domain.DateLayout, q.Get("end"))
	if err1 != nil || err2 != nil {
		writeBadRequest(w, "start and end must be yyyy-mm-dd dates")
		return
	}

	days, err := s.weather.Preview(r.Context(), lat, lon, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	available := 0
	data := make([]dayWeatherResponse, len(days))
	for i, d := range days {
		data[i] = dayToResponse(d)
		if d.Available {
			available++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":           data,
		"available_days": available,
		"total_days":     len(days),
	})
}

func dayToResponse(d domain.DayWeather) dayWeatherResponse {
	resp := dayWeatherResponse{
		Date:      d.Date.Format(domain.DateLayout),
		Available: d.Available,
	}
	if d.Available {
		temp := d.Temperature
		desc := d.Description
		icon := d.Icon
		resp.Temperature = &temp
		resp.Description = &desc
		resp.Icon = &icon
	}
	return resp
}
