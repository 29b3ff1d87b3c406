package models

// OU is an organizational unit.
type OU struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Division belongs to one OU and owns at most one credential repo.
// CredentialRepoID is empty until the first credential is added.
type Division struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	OUID             string `json:"ou"`
	CredentialRepoID string `json:"credentialRepo,omitempty"`
}

// HasRepo reports whether a credential repo is linked to the division.
func (d *Division) HasRepo() bool { return d.CredentialRepoID != "" }

// RepoName is the name given to a division's lazily created repo.
func (d *Division) RepoName() string { return d.Name + "Repo" }

// Credential is a single key/value entry. Keys are not unique within a repo;
// the entry is addressed by ID.
type Credential struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CredentialRepo holds the credentials of exactly one division, in insertion
// order.
type CredentialRepo struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Credentials []Credential `json:"credentials"`
}

// EmptyRepo is returned for divisions that have no repo yet.
func EmptyRepo() *CredentialRepo {
	return &CredentialRepo{Credentials: []Credential{}}
}

// Find returns the entry with the given id.
func (r *CredentialRepo) Find(id string) (*Credential, bool) {
	for i := range r.Credentials {
		if r.Credentials[i].ID == id {
			return &r.Credentials[i], true
		}
	}
	return nil, false
}
