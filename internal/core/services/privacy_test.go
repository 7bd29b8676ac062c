package services

import (
	"testing"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subjectWithEverything(settings models.PrivacySettings) *models.User {
	return &models.User{
		ID:       10,
		UserType: domain.UserTypeAlumni,
		Status:   domain.UserStatusApproved,
		Profile: &models.Profile{
			FullName:          "Asha Rao",
			AlumniID:          strPtr("QF20150001"),
			BatchYear:         intPtr(2015),
			Department:        strPtr("Commerce"),
			Course:            strPtr("BCom"),
			CurrentlyStudying: false,
			CurrentlyWorking:  true,
			City:              strPtr("Pune"),
			State:             strPtr("Maharashtra"),
			Country:           strPtr("India"),
			MaritalStatus:     strPtr("married"),
			SpouseName:        strPtr("Ravi"),
			ChildrenCount:     intPtr(1),
			PrivacySettings:   &settings,
			ContactDetails:    &models.ContactDetails{Phone: strPtr("+91 90000 00000")},
			Education:         []models.EducationRecord{{Institution: "Quest College", StartYear: 2012}},
			Jobs: []models.JobExperience{
				{CompanyName: "Acme", JobTitle: "Analyst", CurrentlyWorking: true, StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
				{CompanyName: "OldCo", JobTitle: "Intern", StartDate: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
	}
}

func TestProjectMember_SelfAndAdminSeeEverything(t *testing.T) {
	subject := subjectWithEverything(models.PrivacySettings{})

	for name, viewer := range map[string]domain.Actor{
		"self":  {UserID: 10, Role: domain.RoleAlumniMember},
		"admin": {UserID: 1, Role: domain.RoleAdmin},
	} {
		t.Run(name, func(t *testing.T) {
			view := ProjectMember(subject, viewer)
			p := view.Profile
			assert.Equal(t, "married", *p.MaritalStatus)
			assert.Len(t, p.EducationRecords, 1)
			assert.Len(t, p.JobExperiences, 2)
			require.NotNil(t, p.CurrentJob)
			assert.Equal(t, "Acme", p.CurrentJob.CompanyName)
			require.NotNil(t, p.ContactDetails)
			assert.Equal(t, "QF20150001", *p.AlumniID)
		})
	}
}

func TestProjectMember_AlumniViewerFollowsSettings(t *testing.T) {
	subject := subjectWithEverything(models.DefaultPrivacySettings())
	viewer := domain.Actor{UserID: 20, Role: domain.RoleAlumniMember}

	p := ProjectMember(subject, viewer).Profile

	assert.Nil(t, p.MaritalStatus)
	assert.Nil(t, p.SpouseName)
	assert.Nil(t, p.ChildrenCount)
	assert.Nil(t, p.EducationRecords)
	assert.Nil(t, p.JobExperiences)
	require.NotNil(t, p.CurrentJob)
	assert.Equal(t, "Analyst", p.CurrentJob.JobTitle)
	require.NotNil(t, p.ContactDetails)
	assert.Equal(t, "+91 90000 00000", *p.ContactDetails.Phone)
	assert.Equal(t, 2015, *p.BatchYear)
	require.NotNil(t, p.CurrentlyStudying)
}

func TestProjectMember_NonAlumniViewerNeverSeesRestrictedSections(t *testing.T) {
	subject := subjectWithEverything(models.PrivacySettings{
		FamilyDetailsVisible:  true,
		EducationVisible:      true,
		JobHistoryVisible:     true,
		CurrentJobVisible:     true,
		ContactDetailsVisible: false,
	})
	viewer := domain.Actor{UserID: 30, Role: domain.RoleNonAlumniMember, UserType: domain.UserTypeNonAlumni}

	p := ProjectMember(subject, viewer).Profile

	assert.Nil(t, p.MaritalStatus)
	assert.Nil(t, p.EducationRecords)
	assert.Nil(t, p.JobExperiences)
	assert.Nil(t, p.AlumniID)
	assert.Nil(t, p.BatchYear)
	assert.Nil(t, p.Department)
	assert.Nil(t, p.CurrentlyStudying)
	assert.Nil(t, p.ContactDetails)
	require.NotNil(t, p.CurrentJob)
	assert.Equal(t, "Asha Rao", p.FullName)
	assert.Equal(t, "Pune", *p.City)
}

func TestProjectMember_VisibleEmptySectionsAreEmptyLists(t *testing.T) {
	subject := subjectWithEverything(models.PrivacySettings{EducationVisible: true, JobHistoryVisible: true})
	subject.Profile.Education = nil
	subject.Profile.Jobs = nil

	p := ProjectMember(subject, domain.Actor{UserID: 20, Role: domain.RoleAlumniMember}).Profile
	assert.NotNil(t, p.EducationRecords)
	assert.Empty(t, p.EducationRecords)
	assert.NotNil(t, p.JobExperiences)
	assert.Nil(t, p.CurrentJob)
}

func TestProjectPublicMember(t *testing.T) {
	subject := subjectWithEverything(models.PrivacySettings{
		CurrentJobVisible: true,
		EducationVisible:  true,
	})

	view := ProjectPublicMember(subject)

	assert.Equal(t, "Asha Rao", view.FullName)
	assert.Equal(t, "QF20150001", *view.AlumniID)
	require.NotNil(t, view.CurrentJob)
	assert.Len(t, view.EducationRecords, 1)
	assert.Nil(t, view.JobExperiences)
	assert.Nil(t, view.ContactDetails)
}

func TestBuildDirectoryFilters_OnlyUsesProjectedValues(t *testing.T) {
	visible := subjectWithEverything(models.PrivacySettings{CurrentJobVisible: true})
	hidden := subjectWithEverything(models.PrivacySettings{CurrentJobVisible: false})
	hidden.ID = 11
	hidden.Profile.Jobs[0].CompanyName = "SecretCorp"
	hidden.Profile.Country = strPtr("Kenya")
	hidden.Profile.State = strPtr("Nairobi")
	hidden.Profile.City = nil

	viewer := domain.Actor{UserID: 20, Role: domain.RoleAlumniMember}
	views := []MemberView{ProjectMember(visible, viewer), ProjectMember(hidden, viewer)}

	filters := BuildDirectoryFilters(views)

	assert.Equal(t, []string{"Acme"}, filters.Companies)
	assert.Equal(t, []int{2015}, filters.BatchYears)
	assert.Equal(t, []string{"India", "Kenya"}, filters.Countries)
	assert.Equal(t, []string{"Maharashtra"}, filters.StatesByCountry["India"])
	assert.Equal(t, []string{"Pune"}, filters.CitiesByCountryState[CountryStateKey("India", "Maharashtra")])
	_, hasKenyaCities := filters.CitiesByCountryState[CountryStateKey("Kenya", "Nairobi")]
	assert.False(t, hasKenyaCities)
	assert.Equal(t, []string{"ALUMNI"}, filters.UserTypes)
}

func TestFilterMembers(t *testing.T) {
	visible := subjectWithEverything(models.PrivacySettings{CurrentJobVisible: true})
	hidden := subjectWithEverything(models.PrivacySettings{CurrentJobVisible: false})
	hidden.ID = 11
	hidden.Profile.FullName = "Bhavna Iyer"

	viewer := domain.Actor{UserID: 20, Role: domain.RoleAlumniMember}
	views := []MemberView{ProjectMember(visible, viewer), ProjectMember(hidden, viewer)}

	byCompany := FilterMembers(views, DirectoryQuery{Company: "acme"})
	require.Len(t, byCompany, 1)
	assert.Equal(t, uint(10), byCompany[0].ID)

	bySearch := FilterMembers(views, DirectoryQuery{Search: "bhav"})
	require.Len(t, bySearch, 1)
	assert.Equal(t, uint(11), bySearch[0].ID)

	assert.Len(t, FilterMembers(views, DirectoryQuery{BatchYear: "2015", Country: "India"}), 2)
	assert.Empty(t, FilterMembers(views, DirectoryQuery{UserType: "STAFF"}))
}
