package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.uber.org/zap"
)

type cognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

type CognitoConfig struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ClientSecret string
}

// CognitoProvider signs users in with the USER_PASSWORD_AUTH flow. The
// identity is read from the returned ID token after local verification.
type CognitoProvider struct {
	client       cognitoAPI
	verifier     *Verifier
	clientID     string
	clientSecret string
	logger       *zap.Logger
}

func NewCognitoProvider(ctx context.Context, cfg CognitoConfig, verifier *Verifier, logger *zap.Logger) (*CognitoProvider, error) {
	if cfg.Region == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("cognito provider: region and client id are required")
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newCognitoProvider(cip.NewFromConfig(awsCfg), cfg, verifier, logger), nil
}

func newCognitoProvider(client cognitoAPI, cfg CognitoConfig, verifier *Verifier, logger *zap.Logger) *CognitoProvider {
	return &CognitoProvider{
		client:       client,
		verifier:     verifier,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		logger:       logger,
	}
}

// secretHash is required by app clients configured with a client secret.
func (p *CognitoProvider) secretHash(username string) *string {
	if p.clientSecret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(p.clientSecret))
	mac.Write([]byte(username + p.clientID))
	return aws.String(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

func mapCognitoError(err error) error {
	var notAuthorized *types.NotAuthorizedException
	var userNotFound *types.UserNotFoundException
	var notConfirmed *types.UserNotConfirmedException
	var exists *types.UsernameExistsException
	var codeMismatch *types.CodeMismatchException
	var expiredCode *types.ExpiredCodeException

	switch {
	case errors.As(err, &notAuthorized), errors.As(err, &userNotFound):
		return ErrInvalidCredentials
	case errors.As(err, &notConfirmed):
		return ErrUserNotConfirmed
	case errors.As(err, &exists):
		return ErrUserExists
	case errors.As(err, &codeMismatch), errors.As(err, &expiredCode):
		return ErrInvalidCode
	default:
		return fmt.Errorf("cognito: %w", err)
	}
}

func (p *CognitoProvider) Authenticate(ctx context.Context, username, password string) (*Identity, *Tokens, error) {
	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	if hash := p.secretHash(username); hash != nil {
		params["SECRET_HASH"] = *hash
	}

	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(p.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return nil, nil, mapCognitoError(err)
	}

	if out.ChallengeName != "" {
		p.logger.Info("cognito sign-in requires a challenge",
			zap.String("username", username),
			zap.String("challenge", string(out.ChallengeName)),
		)
		return nil, nil, ErrChallengeRequired
	}

	result := out.AuthenticationResult
	if result == nil || result.IdToken == nil {
		return nil, nil, fmt.Errorf("cognito: empty authentication result")
	}

	claims, err := p.verifier.Verify(*result.IdToken)
	if err != nil {
		return nil, nil, fmt.Errorf("cognito id token: %w", err)
	}

	identity := &Identity{
		Subject:  claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
	}
	if identity.Username == "" {
		identity.Username = username
	}

	return identity, &Tokens{
		IDToken:      aws.ToString(result.IdToken),
		AccessToken:  aws.ToString(result.AccessToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		ExpiresIn:    result.ExpiresIn,
	}, nil
}

func (p *CognitoProvider) SignUp(ctx context.Context, username, password, email string) error {
	_, err := p.client.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(p.clientID),
		Username:   aws.String(username),
		Password:   aws.String(password),
		SecretHash: p.secretHash(username),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return mapCognitoError(err)
	}
	return nil
}

func (p *CognitoProvider) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := p.client.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       p.secretHash(username),
	})
	if err != nil {
		return mapCognitoError(err)
	}
	return nil
}

func (p *CognitoProvider) SignOut(ctx context.Context, accessToken string) error {
	_, err := p.client.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return mapCognitoError(err)
	}
	return nil
}
