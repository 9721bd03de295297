package model

// Request bodies are explicit tagged schemas; unknown or malformed shapes
// are rejected at the decoding boundary before any business logic runs.

type RegistrationRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ActivationRequest struct {
	ActivationToken string `json:"activation_token" validate:"required"`
	ActivationCode  string `json:"activation_code" validate:"required,len=4,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SocialAuthRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

type UpdateUserDataRequest struct {
	Name  string `json:"name" validate:"omitempty,min=1"`
	Email string `json:"email" validate:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type UpdateAvatarRequest struct {
	// Avatar is the raw image payload, base64 encoded.
	Avatar string `json:"avatar" validate:"required"`
}

type UpdateUserRoleRequest struct {
	ID   string `json:"id" validate:"required"`
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type CoursePayload struct {
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description" validate:"required"`
	Price          float64         `json:"price" validate:"required,gte=0"`
	EstimatedPrice float64         `json:"estimated_price" validate:"omitempty,gte=0"`
	Tags           string          `json:"tags"`
	Level          string          `json:"level"`
	DemoURL        string          `json:"demo_url"`
	Benefits       []ListItem      `json:"benefits"`
	Prerequisites  []ListItem      `json:"prerequisites"`
	Sections       []CourseSection `json:"course_data"`
	// Thumbnail is a base64 image payload uploaded to object storage.
	Thumbnail string `json:"thumbnail"`
}

type EditCoursePayload struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          float64         `json:"price" validate:"omitempty,gte=0"`
	EstimatedPrice float64         `json:"estimated_price" validate:"omitempty,gte=0"`
	Tags           string          `json:"tags"`
	Level          string          `json:"level"`
	DemoURL        string          `json:"demo_url"`
	Benefits       []ListItem      `json:"benefits"`
	Prerequisites  []ListItem      `json:"prerequisites"`
	Sections       []CourseSection `json:"course_data"`
	Thumbnail      string          `json:"thumbnail"`
}

type AddQuestionRequest struct {
	Question  string `json:"question" validate:"required"`
	CourseID  string `json:"courseId" validate:"required"`
	ContentID string `json:"contentId" validate:"required"`
}

type AddAnswerRequest struct {
	Answer     string `json:"answer" validate:"required"`
	CourseID   string `json:"courseId" validate:"required"`
	ContentID  string `json:"contentId" validate:"required"`
	QuestionID string `json:"questionId" validate:"required"`
}

type AddReviewRequest struct {
	Review string  `json:"review" validate:"required"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
}

type AddReviewReplyRequest struct {
	Comment  string `json:"comment" validate:"required"`
	CourseID string `json:"courseId" validate:"required"`
	ReviewID string `json:"reviewId" validate:"required"`
}

type CreateOrderRequest struct {
	CourseID    string         `json:"courseId" validate:"required"`
	PaymentInfo map[string]any `json:"payment_info"`
}

type LayoutRequest struct {
	Kind       string     `json:"type" validate:"required,oneof=Banner FAQ Categories"`
	Image      string     `json:"image"`
	Title      string     `json:"title"`
	SubTitle   string     `json:"subTitle"`
	FAQ        []FAQItem  `json:"faq" validate:"omitempty,dive"`
	Categories []ListItem `json:"categories" validate:"omitempty,dive"`
}
