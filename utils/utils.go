package utils

// 辅助工具函数：密码哈希与JWT
import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const cipher_number = 12 //bcrypt的代价因子

func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cipher_number)
	return string(hash), err
}

func CheckPassword(hash, pwd string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd)) == nil
}

// GenerateJWT 签发携带 user_id/username 的token，默认24小时过期
func GenerateJWT(userID uint, username, secret string, expireHours int) (string, error) {
	if expireHours <= 0 {
		expireHours = 24
	}
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(time.Duration(expireHours) * time.Hour).Unix(), // 过期时间（秒）
		"iat":      time.Now().Unix(),                                             // 签发时间
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT 校验签名和过期时间，取出token里的用户身份
func ParseJWT(tk, secret string) (uint, string, error) {
	tk = strings.TrimSpace(tk)
	if low := strings.ToLower(tk); strings.HasPrefix(low, "bearer ") {
		tk = strings.TrimSpace(tk[7:]) //7-前缀长度
	}
	if tk == "" {
		return 0, "", errors.New("empty token")
	}
	token, err := jwt.Parse(tk, func(token *jwt.Token) (interface{}, error) {
		// 固定算法族
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", errors.New("invalid token")
	}
	// JSON 数字解析出来是 float64，需要转回去
	idFloat, ok1 := claims["user_id"].(float64)
	username, ok2 := claims["username"].(string)
	if !ok1 || !ok2 {
		return 0, "", errors.New("token claims missing user identity")
	}
	return uint(idFloat), username, nil
}
