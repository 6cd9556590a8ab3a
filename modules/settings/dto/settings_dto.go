package dto

type SettingsRequest struct {
	IsOpenCalendarLeftBar *bool `json:"isOpenCalendarLeftBar"`
	FirstDayOfWeek        *int  `json:"firstDayOfWeek"`
	HideNonWorkingDays    *bool `json:"hideNonWorkingDays"`
}

type SettingsResponse struct {
	IsOpenCalendarLeftBar bool `json:"isOpenCalendarLeftBar"`
	FirstDayOfWeek        int  `json:"firstDayOfWeek"`
	HideNonWorkingDays    bool `json:"hideNonWorkingDays"`
}
