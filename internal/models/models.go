package models

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the status allows no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is one tracked automation attempt in the ledger.
type Job struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       JobStatus  `json:"status"`
	PropertyID   string     `json:"propertyId"`
	PropertyName string     `json:"propertyName"`
	PropertyURL  string     `json:"propertyUrl"`
	CreatedAt    time.Time  `json:"createdAt"`
	StartedAt    *time.Time `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	Result       string     `json:"result,omitempty"`
	Error        string     `json:"error,omitempty"`
	UsedAILetter bool       `json:"usedAILetter"`
}

type CredentialStatus string

const (
	CredentialNotConnected   CredentialStatus = "not_connected"
	CredentialConnected      CredentialStatus = "connected"
	CredentialNeedsReconnect CredentialStatus = "needs_reconnect"
)

// Credential is the vaulted authenticated session for the rental site.
// EncryptedAuthState is the vault envelope; it stays present on
// needs_reconnect so a failed session can still be inspected.
type Credential struct {
	Status             CredentialStatus `json:"status"`
	EncryptedAuthState string           `json:"encryptedAuthState,omitempty"`
	ConnectedAt        *time.Time       `json:"connectedAt"`
	Email              string           `json:"email,omitempty"`
}

type PropertyState string

const (
	PropertyNew         PropertyState = "new"
	PropertyInteresting PropertyState = "interesting"
	PropertyShortlisted PropertyState = "shortlisted"
	PropertyHidden      PropertyState = "hidden"
)

// Property is one scraped rental listing.
type Property struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	URL           string        `json:"url"`
	Price         int           `json:"price"`
	ZipCode       string        `json:"zipCode"`
	City          string        `json:"city"`
	Neighborhood  string        `json:"neighborhood"`
	AgentName     string        `json:"agentName"`
	AgentURL      string        `json:"agentUrl"`
	SurfaceArea   int           `json:"surfaceArea"`
	Bedrooms      int           `json:"bedrooms"`
	Furniture     string        `json:"furniture"`
	State         PropertyState `json:"state"`
	DiscoveryDate string        `json:"discoveryDate"`
	AppliedAt     *time.Time    `json:"appliedAt,omitempty"`
}

// Profile holds the applicant data used for autofill and letter generation.
// The form-field group maps one to one onto the rental site's application
// form; the rest feeds the letter prompt.
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	// Application form fields
	Salutation             string `json:"salutation"`
	DateOfBirth            string `json:"dateOfBirth"` // YYYY-MM-DD
	WorkSituation          string `json:"workSituation"`
	GrossIncome            string `json:"grossIncome"`
	Guarantor              string `json:"guarantor"`
	LivingTogether         string `json:"livingTogether"`
	NumberOfTenants        string `json:"numberOfTenants"`
	HasPets                bool   `json:"hasPets"`
	DesiredStartDate       string `json:"desiredStartDate"` // YYYY-MM-DD
	DesiredRentalPeriod    string `json:"desiredRentalPeriod"`
	CurrentLivingSituation string `json:"currentLivingSituation"`

	// Letter generation profile
	AgeCategory          string `json:"ageCategory"`
	Occupation           string `json:"occupation"`
	ContractType         string `json:"contractType"`
	IncomeDescription    string `json:"incomeDescription"`
	Household            string `json:"household"`
	Smoking              string `json:"smoking"`
	Pets                 string `json:"pets"`
	MoveReason           string `json:"moveReason"`
	PreferredStartDate   string `json:"preferredStartDate"`
	DocumentsAvailable   string `json:"documentsAvailable"`
	ViewingAvailability  string `json:"viewingAvailability"`
	WorkLocation         string `json:"workLocation"`
	TransportMode        string `json:"transportMode"`
	ImportantPlaces      string `json:"importantPlaces"`
	NeighborhoodPrefs    string `json:"neighborhoodPrefs"`
	PersonalNote         string `json:"personalNote"`
	HousingPrefs         string `json:"housingPrefs"`
	DefaultLetter        string `json:"defaultLetter"`

	Credential Credential `json:"credential"`
}

// FullName joins first and last name, falling back to the username.
func (p Profile) FullName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" {
		name = p.Username
	}
	return name
}
