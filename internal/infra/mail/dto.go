package mail

import "github.com/LeomirDias/gpmd-sys/internal/config"

// LogoContentID é referenciado no template como src="cid:carslab-logo".
const LogoContentID = "carslab-logo"

type ProductDeliveryData struct {
	CustomerName   string
	ProductSummary string
	HasLogo        bool
	Brand          config.Brand
}

type SenderConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromName    string
	FromAddress string
	LogoPath    string
	Brand       config.Brand
}
