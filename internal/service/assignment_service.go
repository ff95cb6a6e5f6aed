package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

// activeDeliveryBoyID resolves the delivery boy a user's orders should
// carry. Shared by order creation and the assignment propagation paths
// so a new order and a re-stamped one can never disagree.
func activeDeliveryBoyID(repo repository.AssignmentRepository, userID uint) (*uint, error) {
	assignment, err := repo.GetActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, nil
	}
	boyID := assignment.DeliveryBoyID
	return &boyID, nil
}

// AssignmentService manages user-to-delivery-boy assignments and the
// cascades they cause on open orders. Assignment history rows are never
// deleted, only deactivated.
type AssignmentService struct {
	assignmentRepo  repository.AssignmentRepository
	orderRepo       repository.OrderRepository
	userRepo        repository.UserRepository
	deliveryBoyRepo repository.DeliveryBoyRepository
}

// NewAssignmentService creates an assignment service.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, orderRepo repository.OrderRepository, userRepo repository.UserRepository, deliveryBoyRepo repository.DeliveryBoyRepository) *AssignmentService {
	return &AssignmentService{
		assignmentRepo:  assignmentRepo,
		orderRepo:       orderRepo,
		userRepo:        userRepo,
		deliveryBoyRepo: deliveryBoyRepo,
	}
}

// AssignInput is the assignment creation request.
type AssignInput struct {
	UserID        uint
	DeliveryBoyID uint
	Shifts        []string
	Areas         []string
	Sequence      int
	Notes         string
	AssignedBy    models.ActorRef
}

// propagateToOpenOrders re-stamps all of the user's open orders with
// the given delivery boy (nil strips the reference). Terminal orders
// are never touched.
func (s *AssignmentService) propagateToOpenOrders(tx *gorm.DB, userID uint, boyID *uint) error {
	orderRepo := s.orderRepo.WithTx(tx)
	orders, err := orderRepo.ListOpenByUser(userID)
	if err != nil {
		return err
	}
	for _, order := range orders {
		var value interface{}
		if boyID != nil {
			value = *boyID
		}
		if err := orderRepo.UpdateFields(order.ID, map[string]interface{}{
			"delivery_boy_id": value,
			"updated_at":      time.Now(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *AssignmentService) resolveActiveBoy(id uint) (*models.DeliveryBoy, error) {
	boy, err := s.deliveryBoyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if boy == nil {
		return nil, ErrDeliveryBoyNotFound
	}
	if !boy.IsActive {
		return nil, ErrDeliveryBoyInactive
	}
	return boy, nil
}

// Assign gives a user a delivery boy. Any existing active assignment is
// deactivated first, and the user's open orders are re-stamped.
func (s *AssignmentService) Assign(input AssignInput) (*models.UserDeliveryAssignment, error) {
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if _, err := s.resolveActiveBoy(input.DeliveryBoyID); err != nil {
		return nil, err
	}

	now := time.Now()
	userID := input.UserID
	assignment := &models.UserDeliveryAssignment{
		UserID:        input.UserID,
		ActiveKey:     &userID,
		DeliveryBoyID: input.DeliveryBoyID,
		Shifts:        models.StringArray(input.Shifts),
		Areas:         models.StringArray(input.Areas),
		Sequence:      input.Sequence,
		Notes:         input.Notes,
		IsActive:      true,
		AssignedBy:    input.AssignedBy,
		AssignedAt:    now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.assignmentRepo.WithTx(tx)
		existing, err := repo.GetActiveByUser(input.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := repo.Deactivate(existing.ID, now); err != nil {
				return err
			}
		}
		if err := repo.Create(assignment); err != nil {
			return err
		}
		boyID := input.DeliveryBoyID
		return s.propagateToOpenOrders(tx, input.UserID, &boyID)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("assignment_created",
		"assignment_id", assignment.ID,
		"user_id", input.UserID,
		"delivery_boy_id", input.DeliveryBoyID,
	)
	return assignment, nil
}

// ReassignInput is the reassignment request. Mode "entire" replaces the
// standing assignment; "date_range" keeps it and only moves orders whose
// delivery date falls inside [DateFrom, DateTo].
type ReassignInput struct {
	UserID        uint
	ToBoyID       uint
	Mode          string
	DateFrom      *time.Time
	DateTo        *time.Time
	Notes         string
	AssignedBy    models.ActorRef
}

// Reassign moves a user to a different delivery boy.
func (s *AssignmentService) Reassign(input ReassignInput) (*models.UserDeliveryAssignment, error) {
	current, err := s.assignmentRepo.GetActiveByUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrAssignmentNotFound
	}
	if current.DeliveryBoyID == input.ToBoyID {
		return nil, ErrSameDeliveryBoy
	}
	if _, err := s.resolveActiveBoy(input.ToBoyID); err != nil {
		return nil, err
	}

	switch input.Mode {
	case constants.ReassignModeEntire:
		return s.Assign(AssignInput{
			UserID:        input.UserID,
			DeliveryBoyID: input.ToBoyID,
			Shifts:        current.Shifts,
			Areas:         current.Areas,
			Sequence:      current.Sequence,
			Notes:         input.Notes,
			AssignedBy:    input.AssignedBy,
		})
	case constants.ReassignModeDateRange:
		if input.DateFrom == nil || input.DateTo == nil || input.DateTo.Before(*input.DateFrom) {
			return nil, ErrInvalidDateRange
		}
		now := time.Now()
		// Standing assignment stays; the window move is recorded as an
		// inactive audit row.
		audit := &models.UserDeliveryAssignment{
			UserID:        input.UserID,
			ActiveKey:     nil,
			DeliveryBoyID: input.ToBoyID,
			Shifts:        current.Shifts,
			Areas:         current.Areas,
			Notes:         input.Notes,
			IsActive:      false,
			AssignedBy:    input.AssignedBy,
			AssignedAt:    now,
			DeactivatedAt: &now,
		}
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.assignmentRepo.WithTx(tx).Create(audit); err != nil {
				return err
			}
			orderRepo := s.orderRepo.WithTx(tx)
			orders, err := orderRepo.ListOpenByUser(input.UserID)
			if err != nil {
				return err
			}
			// The window selects by when the order was placed, not by
			// its delivery date.
			for _, order := range orders {
				if order.CreatedAt.Before(*input.DateFrom) || order.CreatedAt.After(*input.DateTo) {
					continue
				}
				if err := orderRepo.UpdateFields(order.ID, map[string]interface{}{
					"delivery_boy_id": input.ToBoyID,
					"updated_at":      now,
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		logger.Infow("assignment_date_range_reassigned",
			"user_id", input.UserID,
			"to_delivery_boy_id", input.ToBoyID,
			"date_from", input.DateFrom.Format("2006-01-02"),
			"date_to", input.DateTo.Format("2006-01-02"),
		)
		return audit, nil
	default:
		return nil, ErrInvalidReassignMode
	}
}

// Remove deactivates a user's assignment and strips the delivery-boy
// reference from their open orders.
func (s *AssignmentService) Remove(userID uint) error {
	current, err := s.assignmentRepo.GetActiveByUser(userID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrAssignmentNotFound
	}
	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.assignmentRepo.WithTx(tx).Deactivate(current.ID, now); err != nil {
			return err
		}
		return s.propagateToOpenOrders(tx, userID, nil)
	})
	if err != nil {
		return err
	}
	logger.Infow("assignment_removed", "user_id", userID, "assignment_id", current.ID)
	return nil
}

// BulkTransfer moves every active assignment and all open orders from
// one delivery boy to another.
func (s *AssignmentService) BulkTransfer(fromBoyID, toBoyID uint, assignedBy models.ActorRef) (int, error) {
	if fromBoyID == toBoyID {
		return 0, ErrSameDeliveryBoy
	}
	if _, err := s.resolveActiveBoy(toBoyID); err != nil {
		return 0, err
	}
	assignments, err := s.assignmentRepo.ListActiveByDeliveryBoy(fromBoyID)
	if err != nil {
		return 0, err
	}

	moved := 0
	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.assignmentRepo.WithTx(tx)
		for _, old := range assignments {
			if err := repo.Deactivate(old.ID, now); err != nil {
				return err
			}
			userID := old.UserID
			replacement := &models.UserDeliveryAssignment{
				UserID:        old.UserID,
				ActiveKey:     &userID,
				DeliveryBoyID: toBoyID,
				Shifts:        old.Shifts,
				Areas:         old.Areas,
				Sequence:      old.Sequence,
				Notes:         old.Notes,
				IsActive:      true,
				AssignedBy:    assignedBy,
				AssignedAt:    now,
			}
			if err := repo.Create(replacement); err != nil {
				return err
			}
			moved++
		}
		_, err := s.orderRepo.WithTx(tx).ReassignOpenOrders(fromBoyID, toBoyID, nil, nil)
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.Infow("assignments_bulk_transferred",
		"from_delivery_boy_id", fromBoyID,
		"to_delivery_boy_id", toBoyID,
		"moved", moved,
	)
	return moved, nil
}

// SetUserSequence writes the route position of one user on a delivery
// boy's run.
func (s *AssignmentService) SetUserSequence(assignmentID uint, sequence int) error {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return ErrAssignmentNotFound
	}
	return s.assignmentRepo.UpdateFields(assignmentID, map[string]interface{}{
		"sequence":   sequence,
		"updated_at": time.Now(),
	})
}

// GetActiveForUser returns the user's active assignment, if any.
func (s *AssignmentService) GetActiveForUser(userID uint) (*models.UserDeliveryAssignment, error) {
	return s.assignmentRepo.GetActiveByUser(userID)
}

// List returns assignments for the back office.
func (s *AssignmentService) List(filter repository.AssignmentListFilter) ([]models.UserDeliveryAssignment, int64, error) {
	return s.assignmentRepo.List(filter)
}

// Roster returns a delivery boy's active users in route order.
func (s *AssignmentService) Roster(deliveryBoyID uint) ([]models.UserDeliveryAssignment, error) {
	return s.assignmentRepo.ListActiveByDeliveryBoy(deliveryBoyID)
}
