package repository

import (
	"nexuslearn_backend/internal/model"
	"nexuslearn_backend/internal/util"

	"gorm.io/gorm"
)

type VoteRepository struct {
	DB *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{DB: db}
}

// VoteResult 一次投票落盘后的结果
type VoteResult struct {
	// State 为 nil 表示该用户对目标回到了未投票状态
	State     *model.VoteDirection `json:"state"`
	DeltaUp   int                  `json:"deltaUp"`
	DeltaDown int                  `json:"deltaDown"`
}

// Transition 计算单个用户对单个目标的投票状态转移。
// prev 为 nil 即当前无投票。再次投同方向回到无投票，换方向则两个计数器同时修正。
func Transition(prev *model.VoteDirection, next model.VoteDirection) (state *model.VoteDirection, deltaUp, deltaDown int) {
	if prev == nil {
		if next == model.VoteUp {
			return &next, 1, 0
		}
		return &next, 0, 1
	}

	if *prev == next {
		// 同方向点击第二次, 撤销
		if next == model.VoteUp {
			return nil, -1, 0
		}
		return nil, 0, -1
	}

	// 换方向
	if next == model.VoteUp {
		return &next, 1, -1
	}
	return &next, -1, 1
}

// Apply 在一个事务中落盘投票台账和目标计数器，并同步目标作者的声望。
// authorID 是被投内容的作者；投自己的内容不改声望。
func (r *VoteRepository) Apply(userID uint, targetType model.VoteTarget, targetID string, direction model.VoteDirection, authorID uint, repUpvote, repDownvote int) (*VoteResult, error) {
	targetModel := r.targetModel(targetType)
	if targetModel == nil {
		return nil, util.ErrBadVoteTarget
	}

	var result VoteResult
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var vote model.Vote
		var prev *model.VoteDirection
		found := true
		if err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			First(&vote).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			found = false
		}
		if found {
			d := vote.Direction
			prev = &d
		}

		state, deltaUp, deltaDown := Transition(prev, direction)
		result = VoteResult{State: state, DeltaUp: deltaUp, DeltaDown: deltaDown}

		// 台账行：创建 / 改方向 / 删除
		switch {
		case !found:
			if err := tx.Create(&model.Vote{
				UserID:     userID,
				TargetType: targetType,
				TargetID:   targetID,
				Direction:  direction,
			}).Error; err != nil {
				return err
			}
		case state == nil:
			if err := tx.Delete(&vote).Error; err != nil {
				return err
			}
		default:
			if err := tx.Model(&vote).Update("direction", *state).Error; err != nil {
				return err
			}
		}

		// 目标计数器：两个方向的增量原子应用
		updates := map[string]interface{}{}
		if deltaUp != 0 {
			updates["upvotes"] = gorm.Expr("upvotes + ?", deltaUp)
		}
		if deltaDown != 0 {
			updates["downvotes"] = gorm.Expr("downvotes + ?", deltaDown)
		}
		if len(updates) > 0 {
			if err := tx.Model(targetModel).Where("id = ?", targetID).Updates(updates).Error; err != nil {
				return err
			}
		}

		// 作者声望随净变化同步
		if authorID != userID {
			repDelta := deltaUp*repUpvote + deltaDown*repDownvote
			if repDelta != 0 {
				if err := tx.Model(&model.User{}).
					Where("id = ?", authorID).
					Update("reputation", gorm.Expr("reputation + ?", repDelta)).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Find 返回用户对目标的当前投票方向，无投票时返回 nil
func (r *VoteRepository) Find(userID uint, targetType model.VoteTarget, targetID string) (*model.VoteDirection, error) {
	var vote model.Vote
	err := r.DB.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		First(&vote).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote.Direction, nil
}

func (r *VoteRepository) targetModel(targetType model.VoteTarget) interface{} {
	switch targetType {
	case model.TargetQuestion:
		return &model.Question{}
	case model.TargetAnswer:
		return &model.Answer{}
	}
	return nil
}
