package service

import (
	"encoding/json"
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
)

// TestService is the thin authoring surface needed to seed the session
// engine. Authoring workflows beyond this stay out of scope.
type TestService struct {
	Tests     *repository.TestRepository
	Questions *repository.QuestionRepository
}

func NewTestService(tests *repository.TestRepository, questions *repository.QuestionRepository) *TestService {
	return &TestService{Tests: tests, Questions: questions}
}

type CreateTestRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	Description     string `json:"description" binding:"max=2000"`
	TotalMarks      int    `json:"totalMarks" binding:"required,min=1"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,min=1"`
	NegativeMarking bool   `json:"negativeMarking"`
	NegativeMarkBP  int    `json:"negativeMarkBp" binding:"min=0"`
}

type QuestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required,len=4"`
	CorrectOption int      `json:"correctOption" binding:"required,min=1,max=4"`
	Explanation   string   `json:"explanation"`
	Section       string   `json:"section" binding:"required,max=100"`
	DisplayOrder  int      `json:"displayOrder"`
}

func (s *TestService) CreateTest(req CreateTestRequest) (*model.Test, error) {
	test := &model.Test{
		Title:           req.Title,
		Description:     req.Description,
		TotalMarks:      req.TotalMarks,
		DurationMinutes: req.DurationMinutes,
		NegativeMarking: req.NegativeMarking,
		NegativeMarkBP:  req.NegativeMarkBP,
	}
	if err := s.Tests.Create(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) AddQuestions(testID uint, reqs []QuestionRequest) ([]model.Question, error) {
	if _, err := s.Tests.FindByID(testID); err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, errors.New("no questions supplied")
	}

	questions := make([]model.Question, 0, len(reqs))
	for _, req := range reqs {
		opts, err := json.Marshal(req.Options)
		if err != nil {
			return nil, err
		}
		questions = append(questions, model.Question{
			TestID:        testID,
			Text:          req.Text,
			Options:       opts,
			CorrectOption: req.CorrectOption,
			Explanation:   req.Explanation,
			Section:       req.Section,
			DisplayOrder:  req.DisplayOrder,
		})
	}
	if err := s.Questions.CreateBatch(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *TestService) Publish(testID uint) (*model.Test, error) {
	if _, err := s.Tests.FindByID(testID); err != nil {
		return nil, err
	}
	count, err := s.Questions.CountByTest(testID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errors.New("cannot publish a test without questions")
	}
	if err := s.Tests.SetPublished(testID, true); err != nil {
		return nil, err
	}
	return s.Tests.FindByID(testID)
}

func (s *TestService) ListPublished(page, limit int) ([]model.Test, int64, error) {
	return s.Tests.ListPublished(page, limit)
}

func (s *TestService) GetPublished(testID uint) (*model.Test, error) {
	test, err := s.Tests.FindByID(testID)
	if err != nil {
		return nil, err
	}
	if !test.IsPublished {
		return nil, util.ErrTestNotPublished
	}
	return test, nil
}
