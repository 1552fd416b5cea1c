package controller

import (
	"exam_reviewer_backend/internal/repository"
	"exam_reviewer_backend/internal/service"
	"exam_reviewer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewerAttemptController struct {
	AttemptService    *service.AttemptService
	AnswerService     *service.AnswerService
	SubmissionService *service.SubmissionService
}

func NewReviewerAttemptController(
	attemptService *service.AttemptService,
	answerService *service.AnswerService,
	submissionService *service.SubmissionService,
) *ReviewerAttemptController {
	return &ReviewerAttemptController{
		AttemptService:    attemptService,
		AnswerService:     answerService,
		SubmissionService: submissionService,
	}
}

type resetAnswerRequest struct {
	ReviewerAttemptQuestionID uint `json:"reviewer_attempt_question_id" binding:"required"`
}

func actorFrom(ctx *gin.Context) (service.Actor, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return service.Actor{}, false
	}
	return service.FromClaims(claims), true
}

// @Summary 生成随机测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.GenerateAttemptRequest true "抽题范围与限时"
// @Success 201 {object} util.Response{data=service.GeneratedAttempt}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/generate-attempt [post]
func (c *ReviewerAttemptController) GenerateAttempt(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req service.GenerateAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.RespondError(ctx, util.BindingError(err))
		return
	}

	attempt, err := c.AttemptService.GenerateAttempt(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

// @Summary 剩余时间（分钟）
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param attempt_id query int true "测验ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/attempt-time [get]
func (c *ReviewerAttemptController) GetTimeRemaining(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	attemptID, err := uintParam("attempt_id", ctx.Query("attempt_id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	remaining, err := c.AttemptService.GetTimeRemaining(ctx.Request.Context(), actor, attemptID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"attempt_id": attemptID, "time_remaining": remaining})
}

// @Summary 提交单题答案
// @Description answer 为空时清除答案
// @Tags 作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.AnswerOutcome}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/submit-answer [post]
func (c *ReviewerAttemptController) SubmitAnswer(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.RespondError(ctx, util.BindingError(err))
		return
	}

	out, err := c.AnswerService.SubmitAnswer(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if out.Cleared {
		util.SuccessWithMessage(ctx, "Answer cleared", out)
		return
	}
	util.SuccessWithMessage(ctx, "Answer saved", out)
}

// @Summary 重置单题答案
// @Tags 作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body resetAnswerRequest true "题目槽位"
// @Success 200 {object} util.Response{data=service.AnswerOutcome}
// @Router /api/reset-answer [post]
func (c *ReviewerAttemptController) ResetAnswer(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req resetAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.RespondError(ctx, util.BindingError(err))
		return
	}

	out, err := c.AnswerService.ResetAnswer(ctx.Request.Context(), actor, req.ReviewerAttemptQuestionID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Answer reset", out)
}

// @Summary 标记/取消标记复查
// @Tags 作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SetFlagRequest true "标记"
// @Success 200 {object} util.Response{data=service.FlagOutcome}
// @Router /api/set-flag [put]
func (c *ReviewerAttemptController) SetFlag(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req service.SetFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.RespondError(ctx, util.BindingError(err))
		return
	}

	out, err := c.AnswerService.SetFlag(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// @Summary 提交测验并评分
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.SubmissionResult}
// @Failure 403 {object} util.Response "已过期"
// @Failure 409 {object} util.Response "重复提交"
// @Router /api/submit-attempt/{attemptId} [post]
func (c *ReviewerAttemptController) SubmitAttempt(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	attemptID, err := uintParam("attemptId", ctx.Param("attemptId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	out, err := c.SubmissionService.Submit(ctx.Request.Context(), actor, attemptID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Attempt submitted", out)
}

// @Summary 查看测验结果
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param attempt_id query int true "测验ID"
// @Success 200 {object} util.Response{data=model.Result}
// @Failure 404 {object} util.Response
// @Router /api/view-result [get]
func (c *ReviewerAttemptController) ViewResult(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	attemptID, err := uintParam("attempt_id", ctx.Query("attempt_id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	result, err := c.SubmissionService.ViewResult(ctx.Request.Context(), actor, attemptID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 按 topic/subtopic 分组的题目
// @Description 测验完成后附带正确答案与结果
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param attempt_id query int true "测验ID"
// @Success 200 {object} util.Response{data=service.AttemptQuestionsView}
// @Router /api/attempt-questions [get]
func (c *ReviewerAttemptController) AttemptQuestions(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	attemptID, err := uintParam("attempt_id", ctx.Query("attempt_id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	view, err := c.AttemptService.AttemptQuestions(ctx.Request.Context(), actor, attemptID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if view.Completed() {
		util.SuccessWithMessage(ctx, "Attempt completed. Review data included.", view)
		return
	}
	util.Success(ctx, view)
}

// @Summary 测验详情
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param attempt_id query int true "测验ID"
// @Success 200 {object} util.Response{data=service.AttemptDetail}
// @Router /api/attempt [get]
func (c *ReviewerAttemptController) GetAttempt(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	attemptID, err := uintParam("attempt_id", ctx.Query("attempt_id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	detail, err := c.AttemptService.GetAttempt(ctx.Request.Context(), actor, attemptID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 测验列表
// @Description 没有 attempt:view-any 能力时只返回本人的测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "用户ID"
// @Param reviewer_id query int false "题库ID"
// @Param attempt_id query int false "测验ID"
// @Success 200 {object} util.Response{data=[]service.AttemptSummary}
// @Router /api/attempts [get]
func (c *ReviewerAttemptController) ListAttempts(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var filter repository.AttemptFilter
	var err error
	if filter.UserID, err = optionalUintQuery(ctx, "user_id"); err != nil {
		util.RespondError(ctx, err)
		return
	}
	if filter.ReviewerID, err = optionalUintQuery(ctx, "reviewer_id"); err != nil {
		util.RespondError(ctx, err)
		return
	}
	if filter.AttemptID, err = optionalUintQuery(ctx, "attempt_id"); err != nil {
		util.RespondError(ctx, err)
		return
	}

	attempts, err := c.AttemptService.ListAttempts(ctx.Request.Context(), actor, filter)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
