package mapper

import (
	"calendar-service/modules/settings/dto"
	"calendar-service/modules/settings/entity"
)

func ToSettingsResponse(s *entity.Settings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		IsOpenCalendarLeftBar: s.IsOpenCalendarLeftBar,
		FirstDayOfWeek:        s.FirstDayOfWeek,
		HideNonWorkingDays:    s.HideNonWorkingDays,
	}
}

// ApplyRequest overwrites the fields present in req.
func ApplyRequest(req *dto.SettingsRequest, target *entity.Settings) {
	if req.IsOpenCalendarLeftBar != nil {
		target.IsOpenCalendarLeftBar = *req.IsOpenCalendarLeftBar
	}
	if req.FirstDayOfWeek != nil {
		target.FirstDayOfWeek = *req.FirstDayOfWeek
	}
	if req.HideNonWorkingDays != nil {
		target.HideNonWorkingDays = *req.HideNonWorkingDays
	}
}
