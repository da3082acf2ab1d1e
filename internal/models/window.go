package models

// PageWindow is the client's view of one page of a collection under a search
// term. TotalItems and TotalPages are always the server's last reported values.
type PageWindow struct {
	CurrentPage  int    `json:"currentPage"`
	TotalPages   int    `json:"totalPages"`
	TotalItems   int    `json:"totalItems"`
	ItemsPerPage int    `json:"itemsPerPage"`
	Search       string `json:"search"`
}

func NewPageWindow(itemsPerPage int) PageWindow {
	return PageWindow{CurrentPage: 1, TotalPages: 1, ItemsPerPage: itemsPerPage}
}

func (w PageWindow) HasNext() bool {
	return w.CurrentPage < w.TotalPages
}

func (w PageWindow) HasPrev() bool {
	return w.CurrentPage > 1
}

// CountSnapshot holds one total per entity kind, independent of any PageWindow.
type CountSnapshot struct {
	Teams    int `json:"teams"`
	Projects int `json:"projects"`
	Tasks    int `json:"tasks"`
	Users    int `json:"users"`
}

func (s CountSnapshot) Get(k Kind) int {
	switch k {
	case KindTeams:
		return s.Teams
	case KindProjects:
		return s.Projects
	case KindTasks:
		return s.Tasks
	case KindUsers:
		return s.Users
	}
	return 0
}
