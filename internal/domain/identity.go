package domain

// Identity is an account of the shared platform identity store.
type Identity struct {
	ID          string
	Username    string
	DisplayName string
	Role        string
	IsActive    bool
}

// Student is the directory view of a student.
type Student struct {
	ID              string
	AdmissionNumber string
	FullName        string
	IsActive        bool
}
