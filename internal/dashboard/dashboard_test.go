package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/mutation"
	"github.com/dimitrije/taskboard/internal/relations"
	"github.com/dimitrije/taskboard/internal/session"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/dimitrije/taskboard/internal/view"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/dimitrije/taskboard/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(ev sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fakeSession struct {
	op        session.Operator
	loggedOut bool
}

func (s *fakeSession) Operator() session.Operator { return s.op }
func (s *fakeSession) Logout()                    { s.loggedOut = true }

type fixture struct {
	d       *Dashboard
	stores  *testutil.MockStores
	chat    *testutil.MockChatter
	pub     *recordingPublisher
	session *fakeSession
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		stores:  testutil.NewMockStores(),
		chat:    &testutil.MockChatter{},
		pub:     &recordingPublisher{},
		session: &fakeSession{op: session.Operator{ID: uuid.New(), Email: "op@example.com"}},
	}
	f.d = New(Config{
		Stores:             f.stores.Stores(),
		Chat:               f.chat,
		Session:            f.session,
		Publisher:          f.pub,
		APIURL:             "http://127.0.0.1:3000",
		PageSize:           10,
		PickerPageSize:     5,
		RelationFetchLimit: 1000,
	})
	return f
}

func (f *fixture) stubCounts(teams, projects, tasks, users int) {
	f.stores.Teams.On("Count", mock.Anything).Return(teams, nil)
	f.stores.Projects.On("Count", mock.Anything).Return(projects, nil)
	f.stores.Tasks.On("Count", mock.Anything).Return(tasks, nil)
	f.stores.Users.On("Count", mock.Anything).Return(users, nil)
}

func TestDashboard_Start_LoadsCounts(t *testing.T) {
	f := setup(t)
	f.stubCounts(1, 2, 3, 4)

	require.NoError(t, f.d.Start(context.Background()))

	counts, loaded := f.d.Counts()
	assert.True(t, loaded)
	assert.Equal(t, models.CountSnapshot{Teams: 1, Projects: 2, Tasks: 3, Users: 4}, counts)
	assert.Contains(t, f.pub.types(), sse.EventCountsUpdated)
}

func TestDashboard_Start_CountFailureIsNotFatal(t *testing.T) {
	f := setup(t)
	f.stores.Teams.On("Count", mock.Anything).Return(0, &gateway.TransportError{Op: "teams.count", Err: errors.New("refused")})
	f.stores.Projects.On("Count", mock.Anything).Return(2, nil)
	f.stores.Tasks.On("Count", mock.Anything).Return(3, nil)
	f.stores.Users.On("Count", mock.Anything).Return(4, nil)

	require.NoError(t, f.d.Start(context.Background()))

	_, loaded := f.d.Counts()
	assert.False(t, loaded)
}

func TestDashboard_OpenView_IsLazy(t *testing.T) {
	f := setup(t)
	f.stores.Teams.On("List", mock.Anything, gateway.ListParams{Page: 1, Limit: 10}).
		Return(testutil.Page([]models.Team{{ID: uuid.New(), Name: "G1"}}, 1, 10, 1), nil).Once()

	_, err := f.d.OpenView(context.Background(), models.KindTeams)
	require.NoError(t, err)
	f.d.CloseView()
	snap, err := f.d.OpenView(context.Background(), models.KindTeams)
	require.NoError(t, err)

	teams := snap.(view.Snapshot[models.Team])
	assert.Equal(t, view.StateReady, teams.State)
	assert.Len(t, teams.Items, 1)
	assert.Equal(t, models.KindTeams, f.d.State().Drawer)
	f.stores.Teams.AssertNumberOfCalls(t, "List", 1)
	f.stores.Projects.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestDashboard_OpenView_UnknownKind(t *testing.T) {
	f := setup(t)

	_, err := f.d.OpenView(context.Background(), models.Kind("widgets"))

	assert.ErrorIs(t, err, mutation.ErrUnknownKind)
}

func TestDashboard_OpenView_FailureIsInSnapshot(t *testing.T) {
	f := setup(t)
	f.stores.Users.On("List", mock.Anything, mock.Anything).
		Return(nil, &gateway.TransportError{Op: "users.list", Err: errors.New("refused")}).Once()

	snap, err := f.d.OpenView(context.Background(), models.KindUsers)

	require.NoError(t, err)
	users := snap.(view.Snapshot[models.User])
	assert.Equal(t, view.StateError, users.State)
	assert.Contains(t, users.LastError, "connection error")
}

func TestDashboard_SearchAndPaginate(t *testing.T) {
	f := setup(t)
	f.stores.Teams.On("List", mock.Anything, gateway.ListParams{Page: 1, Limit: 10, Search: "mar"}).
		Return(testutil.Page([]models.Team{{ID: uuid.New(), Name: "Mars"}}, 1, 10, 11), nil).Once()
	f.stores.Teams.On("List", mock.Anything, gateway.ListParams{Page: 2, Limit: 10, Search: "mar"}).
		Return(testutil.Page([]models.Team{{ID: uuid.New(), Name: "Marble"}}, 2, 10, 11), nil).Once()

	_, err := f.d.Search(context.Background(), models.KindTeams, "mar")
	require.NoError(t, err)
	snap, err := f.d.Paginate(context.Background(), models.KindTeams, 2)
	require.NoError(t, err)

	teams := snap.(view.Snapshot[models.Team])
	assert.Equal(t, 2, teams.Window.CurrentPage)
	assert.Equal(t, "mar", teams.Window.Search)
	f.stores.Teams.AssertExpectations(t)
}

func TestDashboard_CreateProjectAtlas(t *testing.T) {
	f := setup(t)
	atlas := models.Project{ID: uuid.New(), Name: "Atlas"}
	f.stores.Teams.On("Count", mock.Anything).Return(1, nil)
	f.stores.Tasks.On("Count", mock.Anything).Return(0, nil)
	f.stores.Users.On("Count", mock.Anything).Return(1, nil)
	f.stores.Projects.On("Count", mock.Anything).Return(2, nil).Once()
	f.stores.Projects.On("Count", mock.Anything).Return(3, nil).Once()
	f.stores.Projects.On("List", mock.Anything, mock.Anything).
		Return(testutil.Page([]models.Project{}, 1, 10, 0), nil).Once()
	f.stores.Projects.On("List", mock.Anything, mock.Anything).
		Return(testutil.Page([]models.Project{atlas}, 1, 10, 1), nil).Once()
	f.stores.Projects.On("Create", mock.Anything, dto.CreateProjectRequest{Name: "Atlas"}).Return(&atlas, nil).Once()

	require.NoError(t, f.d.Start(context.Background()))
	_, err := f.d.OpenView(context.Background(), models.KindProjects)
	require.NoError(t, err)
	before, _ := f.d.Counts()

	_, err = f.d.OpenCreateForm(models.KindProjects)
	require.NoError(t, err)
	_, err = f.d.SubmitForm(context.Background(), json.RawMessage(`{"name":"Atlas"}`))
	require.NoError(t, err)

	st := f.d.State()
	assert.Nil(t, st.Form)
	assert.Equal(t, before.Projects+1, st.Counts.Projects)
	require.Len(t, st.Projects.Items, 1)
	assert.Equal(t, "Atlas", st.Projects.Items[0].Name)
	assert.Equal(t, models.EmptyPlaceholder, st.Projects.Items[0].DescriptionOrPlaceholder())
	f.stores.AssertExpectations(t)
}

func TestDashboard_CreateTeam_DefaultsOwnerToOperator(t *testing.T) {
	f := setup(t)
	f.stubCounts(1, 1, 0, 1)
	projectID := uuid.New()
	want := dto.CreateTeamRequest{Name: "G1", OwnerID: f.session.op.ID, ProjectID: projectID}
	f.stores.Teams.On("Create", mock.Anything, want).
		Return(&models.Team{ID: uuid.New(), Name: "G1", OwnerID: f.session.op.ID, ProjectID: projectID}, nil).Once()

	form, err := f.d.OpenCreateForm(models.KindTeams)
	require.NoError(t, err)
	assert.Equal(t, f.session.op.ID, form.Defaults["ownerId"])

	body, _ := json.Marshal(map[string]any{"name": "G1", "projectId": projectID})
	_, err = f.d.SubmitForm(context.Background(), body)

	require.NoError(t, err)
	f.stores.Teams.AssertExpectations(t)
	f.stores.Teams.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestDashboard_SubmitForm_ValidationKeepsFormOpen(t *testing.T) {
	f := setup(t)
	f.stores.Users.On("Create", mock.Anything, mock.Anything).
		Return(nil, &gateway.ValidationError{Op: "users.create", Status: 400, Message: "email must be an email"}).Once()

	_, err := f.d.OpenCreateForm(models.KindUsers)
	require.NoError(t, err)
	_, err = f.d.SubmitForm(context.Background(), json.RawMessage(`{"email":"nope","password":"x","name":"A"}`))

	require.Error(t, err)
	form := f.d.Form()
	require.NotNil(t, form)
	assert.Equal(t, "email must be an email", form.Error)
	f.stores.Users.AssertNotCalled(t, "Count", mock.Anything)
}

func TestDashboard_SubmitForm_InvalidJSON(t *testing.T) {
	f := setup(t)

	_, err := f.d.OpenCreateForm(models.KindTasks)
	require.NoError(t, err)
	_, err = f.d.SubmitForm(context.Background(), json.RawMessage(`{"title":`))

	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.Equal(t, "Invalid form data", f.d.Form().Error)
}

func TestDashboard_SubmitForm_NoForm(t *testing.T) {
	f := setup(t)

	_, err := f.d.SubmitForm(context.Background(), json.RawMessage(`{}`))

	assert.ErrorIs(t, err, ErrNoActiveForm)
}

func TestDashboard_EditForm_UsesDisplayedRecord(t *testing.T) {
	f := setup(t)
	u := models.User{ID: uuid.New(), Name: "Ana", Role: models.RoleMember}
	f.stores.Users.On("List", mock.Anything, mock.Anything).Return(testutil.Page([]models.User{u}, 1, 10, 1), nil)
	name := "Anna"
	f.stores.Users.On("Update", mock.Anything, u.ID, dto.UpdateUserRequest{Name: &name}).
		Return(&models.User{ID: u.ID, Name: name}, nil).Once()

	_, err := f.d.OpenView(context.Background(), models.KindUsers)
	require.NoError(t, err)
	form, err := f.d.OpenEditForm(context.Background(), models.KindUsers, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, *form.EditingID)

	_, err = f.d.SubmitForm(context.Background(), json.RawMessage(`{"name":"Anna","password":""}`))

	require.NoError(t, err)
	assert.Nil(t, f.d.Form())
	f.stores.Users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.stores.Users.AssertExpectations(t)
}

func TestDashboard_EditForm_FetchesMissingRecord(t *testing.T) {
	f := setup(t)
	id := uuid.New()
	f.stores.Tasks.On("GetByID", mock.Anything, id).Return(&models.Task{ID: id, Title: "T1"}, nil).Once()

	form, err := f.d.OpenEditForm(context.Background(), models.KindTasks, id)

	require.NoError(t, err)
	assert.Equal(t, "T1", form.Record.(*models.Task).Title)
}

func TestDashboard_DeleteTeam_EvictsAndDecrements(t *testing.T) {
	f := setup(t)
	g1, p1 := uuid.New(), uuid.New()
	team := models.Team{ID: g1, Name: "G1", ProjectID: p1}
	members := []models.User{
		{ID: uuid.New(), Name: "u3", TeamID: &g1},
		{ID: uuid.New(), Name: "u4", TeamID: &g1},
	}
	f.stores.Teams.On("Count", mock.Anything).Return(3, nil).Once()
	f.stores.Teams.On("Count", mock.Anything).Return(2, nil).Once()
	f.stores.Projects.On("Count", mock.Anything).Return(1, nil)
	f.stores.Tasks.On("Count", mock.Anything).Return(0, nil)
	f.stores.Users.On("Count", mock.Anything).Return(2, nil)
	f.stores.Teams.On("List", mock.Anything, mock.Anything).Return(testutil.Page([]models.Team{team}, 1, 10, 1), nil).Once()
	f.stores.Teams.On("List", mock.Anything, mock.Anything).Return(testutil.Page([]models.Team{}, 1, 10, 0), nil).Once()
	f.stores.Users.On("List", mock.Anything, mock.Anything).Return(testutil.Page(members, 1, 100, 2), nil).Once()
	f.stores.Teams.On("Delete", mock.Anything, g1).Return(nil).Once()

	require.NoError(t, f.d.Start(context.Background()))
	_, err := f.d.OpenView(context.Background(), models.KindTeams)
	require.NoError(t, err)
	row, expanded, err := f.d.ToggleExpand(context.Background(), models.KindTeams, g1)
	require.NoError(t, err)
	require.True(t, expanded)
	assert.Len(t, row.Children.Users, 2)
	before, _ := f.d.Counts()

	pd, err := f.d.RequestDelete(models.KindTeams, g1)
	require.NoError(t, err)
	assert.Equal(t, "G1", pd.Label)
	f.stores.Teams.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	require.NoError(t, f.d.ConfirmDelete(context.Background(), pd.Token))

	st := f.d.State()
	assert.Less(t, st.Counts.Teams, before.Teams)
	assert.Empty(t, st.Expanded)
	assert.Empty(t, st.Teams.Items)
	assert.Nil(t, st.PendingDelete)
	assert.False(t, f.d.relations.Cached(relations.ParentRef{Kind: models.KindTeams, ID: g1}))
	f.stores.AssertExpectations(t)
}

func TestDashboard_DeleteFailure_ShowsNoticeAndKeepsList(t *testing.T) {
	f := setup(t)
	id := uuid.New()
	f.stores.Projects.On("List", mock.Anything, mock.Anything).
		Return(testutil.Page([]models.Project{{ID: id, Name: "Atlas"}}, 1, 10, 1), nil).Once()
	f.stores.Projects.On("Delete", mock.Anything, id).
		Return(&gateway.NotFoundError{Op: "projects.delete", Message: "Project not found"}).Once()

	_, err := f.d.OpenView(context.Background(), models.KindProjects)
	require.NoError(t, err)
	pd, err := f.d.RequestDelete(models.KindProjects, id)
	require.NoError(t, err)

	err = f.d.ConfirmDelete(context.Background(), pd.Token)

	require.Error(t, err)
	st := f.d.State()
	assert.Equal(t, "Failed to delete project: Project not found", st.Notice)
	assert.Len(t, st.Projects.Items, 1)

	f.d.DismissNotice()
	assert.Empty(t, f.d.State().Notice)
}

func TestDashboard_ConfirmDelete_WrongToken(t *testing.T) {
	f := setup(t)

	_, err := f.d.RequestDelete(models.KindTasks, uuid.New())
	require.NoError(t, err)

	assert.ErrorIs(t, f.d.ConfirmDelete(context.Background(), uuid.New()), ErrNoPendingDelete)
	assert.NotNil(t, f.d.State().PendingDelete)

	f.d.CancelDelete()
	assert.Nil(t, f.d.State().PendingDelete)
}

func TestDashboard_AssignTask_ResolvesNewAssignee(t *testing.T) {
	f := setup(t)
	t1 := uuid.New()
	u1 := models.User{ID: uuid.New(), Name: "u1"}
	u2 := models.User{ID: uuid.New(), Name: "u2"}
	f.stores.Tasks.On("List", mock.Anything, mock.Anything).
		Return(testutil.Page([]models.Task{{ID: t1, Title: "T1", AssignedTo: u1.ID}}, 1, 10, 1), nil).Once()
	f.stores.Tasks.On("List", mock.Anything, mock.Anything).
		Return(testutil.Page([]models.Task{{ID: t1, Title: "T1", AssignedTo: u2.ID}}, 1, 10, 1), nil).Once()
	f.stores.Users.On("GetByID", mock.Anything, u1.ID).Return(&u1, nil).Once()
	f.stores.Users.On("GetByID", mock.Anything, u2.ID).Return(&u2, nil).Once()
	f.stores.Users.On("List", mock.Anything, gateway.ListParams{Page: 1, Limit: 5}).
		Return(testutil.Page([]models.User{u1, u2}, 1, 5, 2), nil).Once()
	f.stores.Tasks.On("Update", mock.Anything, t1, dto.UpdateTaskRequest{AssignedTo: &u2.ID}).
		Return(&models.Task{ID: t1, Title: "T1", AssignedTo: u2.ID}, nil).Once()

	_, err := f.d.OpenView(context.Background(), models.KindTasks)
	require.NoError(t, err)
	row, _, err := f.d.ToggleExpand(context.Background(), models.KindTasks, t1)
	require.NoError(t, err)
	assert.Equal(t, "u1", row.Children.Assignee.Name)

	picker, err := f.d.OpenPicker(context.Background(), mutation.TaskAssignment{TaskID: t1, CurrentUserID: u1.ID})
	require.NoError(t, err)
	assert.Equal(t, PickerTargetTask, picker.Target)
	assert.Equal(t, u1.ID, *picker.HighlightID)
	assert.Len(t, picker.View.Items, 2)

	_, err = f.d.PickerSelect(context.Background(), u2.ID)
	require.NoError(t, err)

	st := f.d.State()
	assert.Nil(t, st.Picker)
	assert.Equal(t, u2.ID, st.Tasks.Items[0].AssignedTo)
	require.Len(t, st.Expanded, 1)
	assert.Equal(t, "u2", st.Expanded[0].Children.Assignee.Name)
	f.stores.AssertExpectations(t)
}

func TestDashboard_AssignTeam_PickerFailureStaysOpen(t *testing.T) {
	f := setup(t)
	teamID, userID := uuid.New(), uuid.New()
	f.stores.Users.On("List", mock.Anything, mock.Anything).Return(testutil.Page([]models.User{}, 1, 5, 0), nil)
	f.stores.Users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil).Once()
	f.stores.Users.On("Update", mock.Anything, userID, mock.Anything).
		Return(nil, &gateway.ValidationError{Op: "users.update", Status: 400, Message: "team does not exist"}).Once()

	picker, err := f.d.OpenPicker(context.Background(), mutation.TeamAssignment{TeamID: teamID})
	require.NoError(t, err)
	assert.Equal(t, PickerTargetTeam, picker.Target)
	assert.Nil(t, picker.HighlightID)

	_, err = f.d.PickerSelect(context.Background(), userID)

	require.Error(t, err)
	st := f.d.State()
	assert.NotNil(t, st.Picker)
	assert.Contains(t, st.Notice, "team does not exist")
}

func TestDashboard_Picker_RequiresOpen(t *testing.T) {
	f := setup(t)

	_, err := f.d.PickerSearch(context.Background(), "a")
	assert.ErrorIs(t, err, ErrPickerClosed)
	_, err = f.d.PickerSelect(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPickerClosed)
}

func TestDashboard_ToggleExpand(t *testing.T) {
	f := setup(t)
	p1 := uuid.New()
	f.stores.Teams.On("List", mock.Anything, mock.Anything).
		Return(testutil.Page([]models.Team{{ID: uuid.New(), Name: "G1", ProjectID: p1}}, 1, 100, 1), nil).Once()

	row, expanded, err := f.d.ToggleExpand(context.Background(), models.KindProjects, p1)
	require.NoError(t, err)
	assert.True(t, expanded)
	assert.Len(t, row.Children.Teams, 1)

	_, expanded, err = f.d.ToggleExpand(context.Background(), models.KindProjects, p1)
	require.NoError(t, err)
	assert.False(t, expanded)
	assert.Empty(t, f.d.Expanded())

	_, _, err = f.d.ToggleExpand(context.Background(), models.KindUsers, uuid.New())
	assert.ErrorIs(t, err, ErrNotExpandable)
}

func TestDashboard_ToggleExpand_MissingAssignee(t *testing.T) {
	f := setup(t)
	taskID, ghost := uuid.New(), uuid.New()
	f.stores.Tasks.On("GetByID", mock.Anything, taskID).Return(&models.Task{ID: taskID, AssignedTo: ghost}, nil).Once()
	f.stores.Users.On("GetByID", mock.Anything, ghost).Return(nil, &gateway.NotFoundError{Op: "users.get"}).Once()

	row, _, err := f.d.ToggleExpand(context.Background(), models.KindTasks, taskID)

	require.NoError(t, err)
	assert.Nil(t, row.Children.Assignee)
	assert.Equal(t, "User not found", row.Message)
}

func TestDashboard_ToggleExpand_TaskReexpandSkipsFetch(t *testing.T) {
	f := setup(t)
	taskID, userID := uuid.New(), uuid.New()
	f.stores.Tasks.On("GetByID", mock.Anything, taskID).Return(&models.Task{ID: taskID, AssignedTo: userID}, nil).Once()
	f.stores.Users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID, Name: "Mara"}, nil).Once()

	_, expanded, err := f.d.ToggleExpand(context.Background(), models.KindTasks, taskID)
	require.NoError(t, err)
	require.True(t, expanded)
	_, expanded, err = f.d.ToggleExpand(context.Background(), models.KindTasks, taskID)
	require.NoError(t, err)
	require.False(t, expanded)

	row, expanded, err := f.d.ToggleExpand(context.Background(), models.KindTasks, taskID)

	require.NoError(t, err)
	assert.True(t, expanded)
	assert.Equal(t, "Mara", row.Children.Assignee.Name)
	f.stores.Tasks.AssertNumberOfCalls(t, "GetByID", 1)
	f.stores.Users.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestDashboard_SendChat_CarriesSession(t *testing.T) {
	f := setup(t)
	f.chat.On("Chat", mock.Anything, dto.ChatRequest{Query: "hi"}).
		Return(&dto.ChatResponse{Answer: "hello", SessionID: "s-1"}, nil).Once()
	f.chat.On("Chat", mock.Anything, dto.ChatRequest{Query: "again", SessionID: "s-1"}).
		Return(&dto.ChatResponse{Answer: "still here", SessionID: "s-1"}, nil).Once()

	reply, err := f.d.SendChat(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Content)

	_, err = f.d.SendChat(context.Background(), "again")
	require.NoError(t, err)

	st := f.d.State()
	assert.Equal(t, "s-1", st.ChatSessionID)
	assert.Len(t, st.Chat, 4)
	f.chat.AssertExpectations(t)
}

func TestDashboard_SendChat_ConnectionError(t *testing.T) {
	f := setup(t)
	f.chat.On("Chat", mock.Anything, mock.Anything).
		Return(nil, &gateway.TransportError{Op: "chat", Err: errors.New("refused")}).Once()

	reply, err := f.d.SendChat(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, ChatRoleAssistant, reply.Role)
	assert.Equal(t, "Connection error: Please ensure the backend server is running at http://127.0.0.1:3000", reply.Content)
}

func TestDashboard_SendChat_EmptyQuery(t *testing.T) {
	f := setup(t)

	_, err := f.d.SendChat(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestDashboard_Logout(t *testing.T) {
	f := setup(t)
	f.stores.Teams.On("List", mock.Anything, mock.Anything).Return(testutil.Page([]models.Team{{ID: uuid.New()}}, 1, 10, 1), nil).Once()

	_, err := f.d.OpenView(context.Background(), models.KindTeams)
	require.NoError(t, err)
	_, err = f.d.OpenCreateForm(models.KindTeams)
	require.NoError(t, err)

	f.d.Logout()
	f.d.Logout()

	assert.True(t, f.session.loggedOut)
	st := f.d.State()
	assert.Empty(t, st.Drawer)
	assert.Nil(t, st.Form)
	assert.Equal(t, view.StateUnloaded, st.Teams.State)
	assert.Empty(t, st.Teams.Items)
	assert.Contains(t, f.pub.types(), sse.EventLoggedOut)

	_, err = f.d.OpenView(context.Background(), models.KindTeams)
	assert.ErrorIs(t, err, ErrLoggedOut)
}
