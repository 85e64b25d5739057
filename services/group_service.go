package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ZAKARYA123J/teamhub/identity"
	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/repositories"
	"github.com/ZAKARYA123J/teamhub/storage"
	"golang.org/x/sync/errgroup"
)

type GroupService interface {
	CreateGroup(ctx context.Context, input GroupInput) (*models.Group, error)
	GetGroup(ctx context.Context, id int) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, id int, input UpdateGroupInput) (*models.Group, error)
	DeleteGroup(ctx context.Context, id int) error
	ListGroupPlayers(ctx context.Context, id int) ([]*models.Player, error)
	AddPlayer(ctx context.Context, groupID, playerID int) (*models.Player, error)
	RemovePlayer(ctx context.Context, groupID, playerID int) error
	ListCoachGroups(ctx context.Context, accountID int) ([]*models.Group, error)
	ListRoster(ctx context.Context) ([]*models.Player, error)
}

type GroupInput struct {
	Name    string        `json:"name"`
	CoachID int           `json:"coach_id"`
	MinAge  int           `json:"min_age"`
	MaxAge  int           `json:"max_age"`
	Players []PlayerInput `json:"players"`
}

type UpdateGroupInput struct {
	Name    *string `json:"name"`
	CoachID *int    `json:"coach_id"`
	MinAge  *int    `json:"min_age"`
	MaxAge  *int    `json:"max_age"`
}

type groupService struct {
	groupRepo     repositories.GroupRepository
	playerRepo    repositories.PlayerRepository
	accountRepo   repositories.AccountRepository
	uploader      storage.FileUploader
	notifications *NotificationService
	logger        *slog.Logger
}

func NewGroupService(
	groupRepo repositories.GroupRepository,
	playerRepo repositories.PlayerRepository,
	accountRepo repositories.AccountRepository,
	uploader storage.FileUploader,
	notifications *NotificationService,
	logger *slog.Logger,
) GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &groupService{
		groupRepo:     groupRepo,
		playerRepo:    playerRepo,
		accountRepo:   accountRepo,
		uploader:      uploader,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, input GroupInput) (*models.Group, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidationFailed)
	}
	if err := validateAgeBounds(input.MinAge, input.MaxAge); err != nil {
		return nil, err
	}

	coach, err := s.accountRepo.GetCoachProfile(ctx, input.CoachID)
	if err != nil {
		return nil, handleRepositoryError(err, "load coach")
	}

	group := &models.Group{
		Name:    name,
		CoachID: coach.ID,
		MinAge:  input.MinAge,
		MaxAge:  input.MaxAge,
		Players: make([]models.Player, 0, len(input.Players)),
	}
	for _, in := range input.Players {
		in.GroupID = nil
		player, err := in.toPlayer()
		if err != nil {
			return nil, err
		}
		if !group.AcceptsAge(player.Age) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerAgeOutOfRange, player.Name)
		}
		group.Players = append(group.Players, *player)
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, handleRepositoryError(err, "create group")
	}
	group.Coach = coach

	s.notifications.NotifyAccount(coach.AccountID, models.NotificationGroupAssigned,
		fmt.Sprintf("you have been assigned to group %q", group.Name), group)
	return group, nil
}

// GetGroup loads the group, then its coach and players concurrently.
func (s *groupService) GetGroup(ctx context.Context, id int) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get group")
	}

	var (
		coach   *models.CoachProfile
		players []*models.Player
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.accountRepo.GetCoachProfile(gctx, group.CoachID)
		if err != nil && !errors.Is(err, repositories.ErrCoachNotFound) {
			return err
		}
		coach = c
		return nil
	})
	g.Go(func() error {
		p, err := s.playerRepo.ListByGroup(gctx, group.ID)
		if err != nil {
			return err
		}
		players = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, handleRepositoryError(err, "load group details")
	}

	if coach != nil {
		group.Coach = coach
	}
	populatePhotoURLs(s.uploader, players)
	group.Players = flattenPlayers(players)
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list groups")
	}
	if err := s.attachPlayers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// attachPlayers fills Players of every group, one query per group in parallel.
func (s *groupService) attachPlayers(ctx context.Context, groups []*models.Group) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			players, err := s.playerRepo.ListByGroup(gctx, group.ID)
			if err != nil {
				return err
			}
			populatePhotoURLs(s.uploader, players)
			group.Players = flattenPlayers(players)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return handleRepositoryError(err, "list group players")
	}
	return nil
}

func (s *groupService) UpdateGroup(ctx context.Context, id int, input UpdateGroupInput) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get group")
	}
	previousCoach := group.Coach

	if input.Name != nil {
		group.Name = derefString(input.Name)
		if group.Name == "" {
			return nil, fmt.Errorf("%w: group name is required", ErrValidationFailed)
		}
	}
	if input.MinAge != nil {
		group.MinAge = *input.MinAge
	}
	if input.MaxAge != nil {
		group.MaxAge = *input.MaxAge
	}
	if err := validateAgeBounds(group.MinAge, group.MaxAge); err != nil {
		return nil, err
	}
	if input.MinAge != nil || input.MaxAge != nil {
		members, err := s.playerRepo.ListByGroup(ctx, id)
		if err != nil {
			return nil, handleRepositoryError(err, "list group players")
		}
		for _, p := range members {
			if !group.AcceptsAge(p.Age) {
				return nil, fmt.Errorf("%w: %s (age %d) does not fit %d-%d",
					ErrPlayerAgeOutOfRange, p.Name, p.Age, group.MinAge, group.MaxAge)
			}
		}
	}
	if input.CoachID != nil && *input.CoachID != group.CoachID {
		coach, err := s.accountRepo.GetCoachProfile(ctx, *input.CoachID)
		if err != nil {
			return nil, handleRepositoryError(err, "load coach")
		}
		group.CoachID = coach.ID
		group.Coach = coach
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, handleRepositoryError(err, "update group")
	}

	if group.Coach != nil {
		kind := models.NotificationGroupUpdated
		if previousCoach == nil || previousCoach.ID != group.Coach.ID {
			kind = models.NotificationGroupAssigned
		}
		s.notifications.NotifyAccount(group.Coach.AccountID, kind,
			fmt.Sprintf("group %q was updated", group.Name), group)
	}
	return group, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, id int) error {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err, "get group")
	}
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err, "delete group")
	}
	if group.Coach != nil {
		s.notifications.NotifyAccount(group.Coach.AccountID, models.NotificationGroupDeleted,
			fmt.Sprintf("group %q was deleted", group.Name), map[string]int{"group_id": id})
	}
	return nil
}

func (s *groupService) ListGroupPlayers(ctx context.Context, id int) ([]*models.Player, error) {
	if _, err := s.groupRepo.GetByID(ctx, id); err != nil {
		return nil, handleRepositoryError(err, "get group")
	}
	players, err := s.playerRepo.ListByGroup(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "list group players")
	}
	populatePhotoURLs(s.uploader, players)
	return players, nil
}

func (s *groupService) AddPlayer(ctx context.Context, groupID, playerID int) (*models.Player, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, handleRepositoryError(err, "get group")
	}
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, handleRepositoryError(err, "get player")
	}
	if !group.AcceptsAge(player.Age) {
		return nil, ErrPlayerAgeOutOfRange
	}

	if err := s.playerRepo.SetGroup(ctx, playerID, &group.ID); err != nil {
		return nil, handleRepositoryError(err, "add player to group")
	}
	player.GroupID = &group.ID
	populatePhotoURL(s.uploader, player)

	if group.Coach != nil {
		s.notifications.NotifyAccount(group.Coach.AccountID, models.NotificationPlayerJoined,
			fmt.Sprintf("%s joined group %q", player.Name, group.Name), player)
	}
	return player, nil
}

func (s *groupService) RemovePlayer(ctx context.Context, groupID, playerID int) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return handleRepositoryError(err, "get group")
	}
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return handleRepositoryError(err, "get player")
	}
	if player.GroupID == nil || *player.GroupID != groupID {
		return ErrPlayerNotInGroup
	}

	if err := s.playerRepo.SetGroup(ctx, playerID, nil); err != nil {
		return handleRepositoryError(err, "remove player from group")
	}

	if group.Coach != nil {
		s.notifications.NotifyAccount(group.Coach.AccountID, models.NotificationPlayerLeft,
			fmt.Sprintf("%s left group %q", player.Name, group.Name), map[string]int{"group_id": groupID, "player_id": playerID})
	}
	return nil
}

// ListCoachGroups returns the groups supervised by the coach behind accountID.
func (s *groupService) ListCoachGroups(ctx context.Context, accountID int) ([]*models.Group, error) {
	rec, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	account, err := identity.Resolve(rec, s.logger)
	if err != nil {
		return nil, err
	}
	coach, ok := account.Profile.(*models.CoachProfile)
	if !ok {
		return nil, ErrForbiddenOperation
	}

	groups, err := s.groupRepo.ListByCoach(ctx, coach.ID)
	if err != nil {
		return nil, handleRepositoryError(err, "list coach groups")
	}
	if err := s.attachPlayers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListRoster is the read-only player list for coaches and staff.
func (s *groupService) ListRoster(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	populatePhotoURLs(s.uploader, players)
	return players, nil
}

func flattenPlayers(players []*models.Player) []models.Player {
	out := make([]models.Player, 0, len(players))
	for _, p := range players {
		out = append(out, *p)
	}
	return out
}
