package services

import (
	"sort"
	"strconv"
	"strings"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"
)

// MemberView is a member record redacted for one viewer
type MemberView struct {
	ID       uint              `json:"id"`
	UserType domain.UserType   `json:"userType"`
	Profile  MemberProfileView `json:"profile"`
}

// MemberProfileView holds the profile fields of a MemberView. Nil means the
// field is hidden from the viewer.
type MemberProfileView struct {
	FullName          string  `json:"fullName"`
	ProfilePhotoURL   *string `json:"profilePhotoUrl"`
	AlumniID          *string `json:"alumniId"`
	BatchYear         *int    `json:"batchYear"`
	Department        *string `json:"department"`
	Course            *string `json:"course"`
	CurrentlyWorking  bool    `json:"currentlyWorking"`
	CurrentlyStudying *bool   `json:"currentlyStudying"`
	City              *string `json:"city"`
	State             *string `json:"state"`
	Country           *string `json:"country"`

	MaritalStatus *string `json:"maritalStatus"`
	SpouseName    *string `json:"spouseName"`
	ChildrenCount *int    `json:"childrenCount"`

	EducationRecords []models.EducationRecord `json:"educationRecords"`
	CurrentJob       *CurrentJobView          `json:"currentJob"`
	JobExperiences   []models.JobExperience   `json:"jobExperiences"`
	ContactDetails   *ContactView             `json:"contactDetails"`
}

// CurrentJobView is the summary of the member's current position
type CurrentJobView struct {
	CompanyName string  `json:"companyName"`
	JobTitle    string  `json:"jobTitle"`
	Industry    *string `json:"industry"`
	JobLocation *string `json:"jobLocation"`
}

// ContactView is the contact block of a projected member
type ContactView struct {
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Whatsapp  *string `json:"whatsapp"`
	LinkedIn  *string `json:"linkedin"`
	Instagram *string `json:"instagram"`
}

// PublicMemberView is the projection served on the unauthenticated QR page
type PublicMemberView struct {
	FullName         string                   `json:"fullName"`
	ProfilePhotoURL  *string                  `json:"profilePhotoUrl"`
	AlumniID         *string                  `json:"alumniId"`
	CurrentlyWorking bool                     `json:"currentlyWorking"`
	City             *string                  `json:"city"`
	State            *string                  `json:"state"`
	Country          *string                  `json:"country"`
	CurrentJob       *CurrentJobView          `json:"currentJob"`
	EducationRecords []models.EducationRecord `json:"educationRecords"`
	JobExperiences   []models.JobExperience   `json:"jobExperiences"`
	ContactDetails   *ContactView             `json:"contactDetails"`
}

// visibility is the resolved set of gated sections for one (subject, viewer) pair
type visibility struct {
	family     bool
	education  bool
	jobHistory bool
	currentJob bool
	contact    bool
}

// resolveVisibility applies the projection rule. Self and admin see
// everything; a non-alumni viewer never sees family, education or job
// history whatever the subject's settings say.
func resolveVisibility(settings models.PrivacySettings, isSelf bool, viewer domain.Actor) visibility {
	if isSelf || viewer.IsAdmin() {
		return visibility{true, true, true, true, true}
	}
	restricted := viewer.IsNonAlumni()
	return visibility{
		family:     !restricted && settings.FamilyDetailsVisible,
		education:  !restricted && settings.EducationVisible,
		jobHistory: !restricted && settings.JobHistoryVisible,
		currentJob: settings.CurrentJobVisible,
		contact:    settings.ContactDetailsVisible,
	}
}

func privacyOf(p *models.Profile) models.PrivacySettings {
	if p.PrivacySettings != nil {
		return *p.PrivacySettings
	}
	return models.DefaultPrivacySettings()
}

// ProjectMember redacts subject for viewer. subject must have its Profile
// tree loaded.
func ProjectMember(subject *models.User, viewer domain.Actor) MemberView {
	view := MemberView{ID: subject.ID, UserType: subject.UserType}
	p := subject.Profile
	if p == nil {
		return view
	}

	isSelf := subject.ID == viewer.UserID
	vis := resolveVisibility(privacyOf(p), isSelf, viewer)
	structuralHidden := viewer.IsNonAlumni() && !isSelf

	pv := MemberProfileView{
		FullName:         p.FullName,
		ProfilePhotoURL:  p.ProfilePhotoURL,
		CurrentlyWorking: p.CurrentlyWorking,
		City:             p.City,
		State:            p.State,
		Country:          p.Country,
	}

	if !structuralHidden {
		studying := p.CurrentlyStudying
		pv.AlumniID = p.AlumniID
		pv.BatchYear = p.BatchYear
		pv.Department = p.Department
		pv.Course = p.Course
		pv.CurrentlyStudying = &studying
	}
	if vis.family {
		pv.MaritalStatus = p.MaritalStatus
		pv.SpouseName = p.SpouseName
		pv.ChildrenCount = p.ChildrenCount
	}
	if vis.education {
		pv.EducationRecords = nonNilEducation(p.Education)
	}
	if vis.jobHistory {
		pv.JobExperiences = nonNilJobs(p.Jobs)
	}
	if vis.currentJob {
		pv.CurrentJob = currentJobOf(p.Jobs)
	}
	if vis.contact {
		pv.ContactDetails = contactOf(p.ContactDetails)
	}

	view.Profile = pv
	return view
}

// ProjectPublicMember builds the QR page view. Only the subject's own
// settings apply; there is no viewer.
func ProjectPublicMember(subject *models.User) PublicMemberView {
	p := subject.Profile
	if p == nil {
		return PublicMemberView{}
	}
	settings := privacyOf(p)

	view := PublicMemberView{
		FullName:         p.FullName,
		ProfilePhotoURL:  p.ProfilePhotoURL,
		AlumniID:         p.AlumniID,
		CurrentlyWorking: p.CurrentlyWorking,
		City:             p.City,
		State:            p.State,
		Country:          p.Country,
	}
	if settings.CurrentJobVisible {
		view.CurrentJob = currentJobOf(p.Jobs)
	}
	if settings.EducationVisible {
		view.EducationRecords = nonNilEducation(p.Education)
	}
	if settings.JobHistoryVisible {
		view.JobExperiences = nonNilJobs(p.Jobs)
	}
	if settings.ContactDetailsVisible {
		view.ContactDetails = contactOf(p.ContactDetails)
	}
	return view
}

// currentJobOf picks the most recent job flagged as current. jobs are
// expected newest first.
func currentJobOf(jobs []models.JobExperience) *CurrentJobView {
	var best *models.JobExperience
	for i := range jobs {
		j := &jobs[i]
		if !j.CurrentlyWorking {
			continue
		}
		if best == nil || j.StartDate.After(best.StartDate) {
			best = j
		}
	}
	if best == nil {
		return nil
	}
	return &CurrentJobView{
		CompanyName: best.CompanyName,
		JobTitle:    best.JobTitle,
		Industry:    best.Industry,
		JobLocation: best.JobLocation,
	}
}

func contactOf(c *models.ContactDetails) *ContactView {
	if c == nil {
		return nil
	}
	return &ContactView{
		Email:     c.Email,
		Phone:     c.Phone,
		Whatsapp:  c.Whatsapp,
		LinkedIn:  c.LinkedIn,
		Instagram: c.Instagram,
	}
}

func nonNilEducation(records []models.EducationRecord) []models.EducationRecord {
	if records == nil {
		return []models.EducationRecord{}
	}
	return records
}

func nonNilJobs(jobs []models.JobExperience) []models.JobExperience {
	if jobs == nil {
		return []models.JobExperience{}
	}
	return jobs
}

// ============================================================
// Directory facets and filtering
// ============================================================

// DirectoryFilters are the facet values offered to one viewer
type DirectoryFilters struct {
	BatchYears           []int               `json:"batchYears"`
	Departments          []string            `json:"departments"`
	Companies            []string            `json:"companies"`
	UserTypes            []string            `json:"userTypes"`
	Countries            []string            `json:"countries"`
	StatesByCountry      map[string][]string `json:"statesByCountry"`
	CitiesByCountryState map[string][]string `json:"citiesByCountryState"`
}

// CountryStateKey is the key of DirectoryFilters.CitiesByCountryState
func CountryStateKey(country, state string) string {
	return country + "||" + state
}

// BuildDirectoryFilters derives facets from already projected views, so a
// facet can only hold values the viewer could read on some profile
func BuildDirectoryFilters(views []MemberView) DirectoryFilters {
	batchYears := map[int]struct{}{}
	departments := map[string]struct{}{}
	companies := map[string]struct{}{}
	userTypes := map[string]struct{}{}
	countries := map[string]struct{}{}
	states := map[string]map[string]struct{}{}
	cities := map[string]map[string]struct{}{}

	for _, m := range views {
		userTypes[string(m.UserType)] = struct{}{}
		p := m.Profile
		if p.BatchYear != nil && *p.BatchYear != 0 {
			batchYears[*p.BatchYear] = struct{}{}
		}
		if s := deref(p.Department); s != "" {
			departments[s] = struct{}{}
		}
		if p.CurrentJob != nil && p.CurrentJob.CompanyName != "" {
			companies[p.CurrentJob.CompanyName] = struct{}{}
		}

		country, state, city := deref(p.Country), deref(p.State), deref(p.City)
		if country == "" {
			continue
		}
		countries[country] = struct{}{}
		if state == "" {
			continue
		}
		addToGroup(states, country, state)
		if city != "" {
			addToGroup(cities, CountryStateKey(country, state), city)
		}
	}

	years := make([]int, 0, len(batchYears))
	for y := range batchYears {
		years = append(years, y)
	}
	sort.Ints(years)

	return DirectoryFilters{
		BatchYears:           years,
		Departments:          sortedKeys(departments),
		Companies:            sortedKeys(companies),
		UserTypes:            sortedKeys(userTypes),
		Countries:            sortedKeys(countries),
		StatesByCountry:      sortedGroups(states),
		CitiesByCountryState: sortedGroups(cities),
	}
}

// DirectoryQuery holds the directory search parameters
type DirectoryQuery struct {
	Search     string `query:"search"`
	BatchYear  string `query:"batchYear"`
	Department string `query:"department"`
	Company    string `query:"company"`
	Country    string `query:"country"`
	State      string `query:"state"`
	City       string `query:"city"`
	UserType   string `query:"userType"`
}

// FilterMembers applies q to projected views. Matching only reads projected
// fields, so a hidden value can never make a member match.
func FilterMembers(views []MemberView, q DirectoryQuery) []MemberView {
	out := make([]MemberView, 0, len(views))
	for _, m := range views {
		if matchesQuery(m, q) {
			out = append(out, m)
		}
	}
	return out
}

func matchesQuery(m MemberView, q DirectoryQuery) bool {
	p := m.Profile
	if q.Search != "" && !containsFold(p.FullName, q.Search) {
		return false
	}
	if q.BatchYear != "" && (p.BatchYear == nil || strconv.Itoa(*p.BatchYear) != q.BatchYear) {
		return false
	}
	if q.Department != "" && !containsFold(deref(p.Department), q.Department) {
		return false
	}
	if q.Company != "" && (p.CurrentJob == nil || !containsFold(p.CurrentJob.CompanyName, q.Company)) {
		return false
	}
	if q.Country != "" && deref(p.Country) != q.Country {
		return false
	}
	if q.State != "" && deref(p.State) != q.State {
		return false
	}
	if q.City != "" && !containsFold(deref(p.City), q.City) {
		return false
	}
	if q.UserType != "" && string(m.UserType) != q.UserType {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func addToGroup(groups map[string]map[string]struct{}, key, value string) {
	if groups[key] == nil {
		groups[key] = map[string]struct{}{}
	}
	groups[key][value] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedGroups(groups map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(groups))
	for k, set := range groups {
		out[k] = sortedKeys(set)
	}
	return out
}
