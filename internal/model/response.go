package model

// Every response carries a success flag; errors carry a flat message, which
// is the contract the frontend consumes.

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type RegistrationResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ActivationToken string `json:"activation_token"`
}

type SessionResponse struct {
	Success     bool   `json:"success"`
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

type RefreshResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
}

type UserResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type UsersResponse struct {
	Success bool   `json:"success"`
	Users   []User `json:"users"`
}

type CourseResponse struct {
	Success bool   `json:"success"`
	Course  Course `json:"course"`
}

type CoursesResponse struct {
	Success bool     `json:"success"`
	Courses []Course `json:"courses"`
}

type CourseContentResponse struct {
	Success bool            `json:"success"`
	Content []CourseSection `json:"content"`
}

type OrderResponse struct {
	Success bool  `json:"success"`
	Order   Order `json:"order"`
}

type OrdersResponse struct {
	Success bool    `json:"success"`
	Orders  []Order `json:"orders"`
}

type NotificationsResponse struct {
	Success       bool           `json:"success"`
	Notifications []Notification `json:"notifications"`
}

type LayoutResponse struct {
	Success bool   `json:"success"`
	Layout  Layout `json:"layout"`
}
