package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrIncorrectEmail    ErrCode = "INCORRECT_EMAIL"
	ErrIncorrectPassword ErrCode = "INCORRECT_PASSWORD"
	ErrSignupRequired    ErrCode = "SIGNUP_REQUIRED"
	ErrTokenRequired     ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid      ErrCode = "TOKEN_INVALID"
	ErrTokenExpired      ErrCode = "TOKEN_EXPIRED"
	ErrSessionRevoked    ErrCode = "SESSION_REVOKED"

	// ─── One-time tokens ───────────────────────────────────────────────
	ErrOTPNotFound      ErrCode = "OTP_NOT_FOUND"
	ErrOTPInvalid       ErrCode = "OTP_INVALID"
	ErrAlreadyVerified  ErrCode = "ALREADY_VERIFIED"
	ErrResetCooldown    ErrCode = "RESET_COOLDOWN"
	ErrSamePassword     ErrCode = "SAME_PASSWORD"
	ErrResetTokenNeeded ErrCode = "RESET_TOKEN_REQUIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrEmailTaken       ErrCode = "EMAIL_TAKEN"
	ErrSubjectNameTaken ErrCode = "SUBJECT_NAME_TAKEN"
	ErrSubjectCodeTaken ErrCode = "SUBJECT_CODE_TAKEN"
	ErrNotTeacherEmail  ErrCode = "NOT_TEACHER_EMAIL"
	ErrQuizTitleTaken   ErrCode = "QUIZ_TITLE_TAKEN"

	// ─── Quiz attempts ─────────────────────────────────────────────────
	ErrQuizNotAvailable ErrCode = "QUIZ_NOT_AVAILABLE"
	ErrInvalidPasscode  ErrCode = "INVALID_PASSCODE"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrAlreadyAttempted ErrCode = "ALREADY_ATTEMPTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrIncorrectEmail:
		return "Email is not registered."
	case ErrIncorrectPassword:
		return "Password is incorrect."
	case ErrSignupRequired:
		return "User is not registered, please sign-up!"
	case ErrTokenRequired:
		return "You must be logged in."
	case ErrTokenInvalid:
		return "Authentication token is not valid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrSessionRevoked:
		return "This session has been signed out. Please login again."

	// ─── One-time tokens ───────────────────────────────────────────────
	case ErrOTPNotFound:
		return "Token not found or expired."
	case ErrOTPInvalid:
		return "Please provide a valid token!"
	case ErrAlreadyVerified:
		return "This account is already verified!"
	case ErrResetCooldown:
		return "Only after 10 minutes you can request for another token."
	case ErrSamePassword:
		return "New password must be different."
	case ErrResetTokenNeeded:
		return "Invalid request, reset token missing."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You have no authority to perform this action."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Please provide all the details."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrEmailTaken:
		return "User already registered, please login!"
	case ErrSubjectNameTaken:
		return "This course is already registered."
	case ErrSubjectCodeTaken:
		return "Already a course is registered with this code."
	case ErrNotTeacherEmail:
		return "Email is not registered as teacher."
	case ErrQuizTitleTaken:
		return "Please enter some other quiz title."

	// ─── Quiz attempts ─────────────────────────────────────────────────
	case ErrQuizNotAvailable:
		return "This quiz is currently not available."
	case ErrInvalidPasscode:
		return "Quiz passcode is not valid."
	case ErrNoQuestions:
		return "No questions added."
	case ErrAlreadyAttempted:
		return "Already attempted the quiz!"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Server traffic error!"
	default:
		return "An unexpected error occurred."
	}
}
