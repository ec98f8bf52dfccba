package usecase

import (
	"context"
	"errors"
	"strings"

	"app/internal/auth"
	"app/internal/domain/model"
	"app/internal/repository"
)

var (
	//401 emailが無い場合もパスワード不一致の場合も同じエラー
	//（ユーザー列挙を防ぐため区別しない）
	ErrInvalidCredentials = errors.New("invalid credentials")

	//403 本人確認済みの後なのでstatusは区別して返す
	ErrAccountInactive  = errors.New("account inactive")
	ErrAccountSuspended = errors.New("account suspended")
	ErrAccountBanned    = errors.New("account banned")

	//409 validatorの重複チェックをすり抜けた同時登録。
	//DBのunique制約が最後の砦で、ここで409に戻す。
	ErrEmailTaken = errors.New("email taken")

	//401 tokenは構造的に有効だがユーザーがもう存在しない
	ErrUserNotFound = errors.New("user not found")

	//401 refresh tokenの署名・書式が不正
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	//401 refresh token自体が期限切れ（再ログインが必要）
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	//401 tokenは有効だがセッションが失効・期限切れ・削除済み
	ErrSessionNotFound = errors.New("session not found")

	//500
	ErrInternal = errors.New("internal error")
)

// ユーザーのAPI返却用DTO
type UserDTO struct {
	ID     int64        `json:"id"`
	Email  string       `json:"email"`
	Role   model.Role   `json:"role"`
	Status model.Status `json:"status"`
}

// login/registerが返すtokenペア
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SessionID    string `json:"sessionId"`
	ExpiresIn    int    `json:"expiresIn"` // accessの残り秒数
	TokenType    string `json:"tokenType"` // 常に "Bearer"
}

// refreshはaccess tokenだけを返す（refresh tokenは回転しない）
type AccessTokenDTO struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	TokenType   string `json:"tokenType"`
}

type LoginOutput struct {
	User UserDTO `json:"user"`
	TokenPair
}

type RegisterInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type AuthUsecase struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	hasher    auth.PasswordHasher
	tokens    *auth.TokenIssuer
	validator AuthValidator
	clock     Clock
	idGen     IDGenerator
}

func NewAuthUsecase(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	validator AuthValidator,
	clock Clock,
	idGen IDGenerator,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		clock:     clock,
		idGen:     idGen,
	}
}

// 会員登録。成功したらログインと同じtokenペアを返す。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*LoginOutput, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in.Email, in.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, ErrInternal
	}

	user := &model.User{
		Email:        normalizeEmail(in.Email),
		PasswordHash: pwHash,
		Role:         model.RoleUser,
		Status:       model.StatusActive,
	}

	//保存。email重複はvalidatorで弾いているが、同時登録の競合は
	//unique制約で検出される（500ではなく409にする）。
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, ErrInternal
	}

	pair, err := u.issuePair(ctx, user, in.IPAddress, in.UserAgent)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{User: toUserDTO(user), TokenPair: *pair}, nil
}

// ログイン処理を実行する
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	//入力検証
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return nil, err
	}

	//emailでユーザー取得（小文字化して照合）
	//ストア障害は5xx。credentialエラーに化けさせない。
	user, err := u.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	//パスワード照合（bcrypt）。不一致もemail不明と同じエラー。
	ok, err := u.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	//statusチェック（本人確認済みなので区別して返す）
	if statusErr := statusToError(user.Status); statusErr != nil {
		return nil, statusErr
	}

	//last_login更新（best-effort）
	_ = u.users.UpdateLastLogin(ctx, user.ID)

	pair, err := u.issuePair(ctx, user, in.IPAddress, in.UserAgent)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{User: toUserDTO(user), TokenPair: *pair}, nil
}

// refresh tokenからaccess tokenを再発行する。
// セッションが真実の源：tokenが署名的に有効でも、
// セッションが失効・期限切れならここで拒否する。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*AccessTokenDTO, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshToken); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	//署名・期限の検証
	userID, err := u.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrRefreshTokenExpired
		}
		return nil, ErrInvalidRefreshToken
	}

	now := u.clock.Now()

	//有効なセッションがあるかDB照合
	session, err := u.sessions.FindActiveByTokenHash(ctx, auth.HashToken(refreshToken), now)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, ErrInternal
	}

	//念のためtokenのsubjectとセッションの所有者を突き合わせる
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	//発行時のclaimsではなく現在のユーザー状態を再確認する
	//ストア障害は5xx（セッション検索の分岐と同じ扱い）
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if statusErr := statusToError(user.Status); statusErr != nil {
		return nil, statusErr
	}

	//access再発行（refresh tokenは回転させない）
	accessToken, expiresAt, err := u.tokens.IssueAccessToken(user, now)
	if err != nil {
		return nil, ErrInternal
	}

	//クライアント情報の更新は失敗してもrefreshは成功扱い
	_ = u.sessions.Touch(ctx, session.ID, ip, userAgent)

	return &AccessTokenDTO{
		AccessToken: accessToken,
		ExpiresIn:   int(expiresAt.Sub(now).Seconds()),
		TokenType:   "Bearer",
	}, nil
}

// ログアウト。tokenが無効でも既にログアウト済みでも成功扱いにする
// （セッションの有無を外に漏らさない）。
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) {
	if strings.TrimSpace(refreshToken) == "" {
		return
	}

	session, err := u.sessions.FindActiveByTokenHash(ctx, auth.HashToken(refreshToken), u.clock.Now())
	if err != nil || session == nil {
		return
	}

	_ = u.sessions.Invalidate(ctx, session.ID)
}

// 全端末からログアウト（パスワード変更・管理者操作で使う）。
func (u *AuthUsecase) InvalidateAllSessions(ctx context.Context, userID int64) (int64, error) {
	count, err := u.sessions.InvalidateAllByUserID(ctx, userID)
	if err != nil {
		return 0, ErrInternal
	}
	return count, nil
}

// 指定ユーザーの有効セッション数（管理側のセッション確認用）。
func (u *AuthUsecase) CountActiveSessions(ctx context.Context, userID int64) (int64, error) {
	count, err := u.sessions.CountActiveByUserID(ctx, userID, u.clock.Now())
	if err != nil {
		return 0, ErrInternal
	}
	return count, nil
}

// 期限切れ・失効済みセッションの掃除。削除件数を返す。
func (u *AuthUsecase) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	count, err := u.sessions.DeleteExpired(ctx, u.clock.Now())
	if err != nil {
		return 0, ErrInternal
	}
	return count, nil
}

// tokenペアの発行とセッション作成を1つの論理単位として行う。
// セッション作成に失敗したらtokenは返さない（使えないtokenを渡さない）。
func (u *AuthUsecase) issuePair(ctx context.Context, user *model.User, ip, userAgent string) (*TokenPair, error) {
	now := u.clock.Now()

	accessToken, accessExp, err := u.tokens.IssueAccessToken(user, now)
	if err != nil {
		return nil, ErrInternal
	}

	refreshToken, refreshExp, err := u.tokens.IssueRefreshToken(user.ID, now)
	if err != nil {
		return nil, ErrInternal
	}

	session := &model.Session{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: auth.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ip,
		Active:    true,
		ExpiresAt: refreshExp,
	}

	if err := u.sessions.Create(ctx, session); err != nil {
		//セッションが無ければrefreshは必ず失敗するのでtokenごと破棄
		return nil, ErrInternal
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func statusToError(s model.Status) error {
	switch s {
	case model.StatusActive:
		return nil
	case model.StatusInactive:
		return ErrAccountInactive
	case model.StatusSuspended:
		return ErrAccountSuspended
	case model.StatusBanned:
		return ErrAccountBanned
	default:
		return ErrAccountInactive
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:     u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}
