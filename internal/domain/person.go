package domain

import (
	"sort"
	"strings"
)

// Role names that make a person a responsible party.
const (
	RoleAD    = "ad"
	RolePreAD = "pre-ad"
)

// Group state and type values read by the dashboard.
const (
	GroupTypeArea     = "area"
	GroupTypeWG       = "wg"
	GroupStateActive  = "active"
	GroupStateAbandon = "abandon"
)

// Person represents one responsible party or author.
type Person struct {
	ID    string
	Name  string
	Email string
}

// NewPerson constructs one validated person.
func NewPerson(id, name, email string) (Person, error) {
	id = strings.TrimSpace(id)
	name = strings.Join(strings.Fields(name), " ")
	if id == "" {
		return Person{}, ErrInvalidID
	}
	if name == "" {
		return Person{}, ErrInvalidName
	}
	return Person{ID: id, Name: name, Email: strings.TrimSpace(strings.ToLower(email))}, nil
}

// NameKey returns the URL-safe key for the person's full name.
func (p Person) NameKey() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(p.Name)), " ", ".")
}

// PlainName returns the display name.
func (p Person) PlainName() string {
	return p.Name
}

// LastName returns the final word of the person's name.
func (p Person) LastName() string {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// Role binds a person to a named role in one group.
type Role struct {
	PersonID     string
	Name         string
	GroupAcronym string
}

// NewRole constructs one validated role.
func NewRole(personID, name, groupAcronym string) (Role, error) {
	personID = strings.TrimSpace(personID)
	name = strings.TrimSpace(strings.ToLower(name))
	groupAcronym = strings.TrimSpace(strings.ToLower(groupAcronym))
	if personID == "" {
		return Role{}, ErrInvalidID
	}
	if name == "" || groupAcronym == "" {
		return Role{}, ErrInvalidRole
	}
	return Role{PersonID: personID, Name: name, GroupAcronym: groupAcronym}, nil
}

// Group represents a working group, area, or other organizational unit.
type Group struct {
	Acronym string
	Name    string
	Type    string
	State   string
	Parent  string
}

// NewGroup constructs one validated group.
func NewGroup(acronym, name, groupType, state, parent string) (Group, error) {
	acronym = strings.TrimSpace(strings.ToLower(acronym))
	if acronym == "" {
		return Group{}, ErrInvalidName
	}
	state = strings.TrimSpace(strings.ToLower(state))
	if state == "" {
		state = GroupStateActive
	}
	return Group{
		Acronym: acronym,
		Name:    strings.TrimSpace(name),
		Type:    strings.TrimSpace(strings.ToLower(groupType)),
		State:   state,
		Parent:  strings.TrimSpace(strings.ToLower(parent)),
	}, nil
}

// ActiveADs returns persons holding the AD role in an active area, ordered by last name.
func ActiveADs(persons []Person, roles []Role, groups []Group) []Person {
	activeAreas := map[string]struct{}{}
	for _, group := range groups {
		if group.Type == GroupTypeArea && group.State == GroupStateActive {
			activeAreas[group.Acronym] = struct{}{}
		}
	}
	adIDs := map[string]struct{}{}
	for _, role := range roles {
		if role.Name != RoleAD {
			continue
		}
		if _, ok := activeAreas[role.GroupAcronym]; ok {
			adIDs[role.PersonID] = struct{}{}
		}
	}
	out := make([]Person, 0, len(adIDs))
	for _, person := range persons {
		if _, ok := adIDs[person.ID]; ok {
			out = append(out, person)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].LastName(), out[j].LastName()
		if li != lj {
			return li < lj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
