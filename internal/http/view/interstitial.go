package view

import (
	"bytes"
	"html/template"
)

// InterstitialData provides the dynamic fields of the ad page shown
// before a redirect. AdHTML is admin-supplied and rendered verbatim.
type InterstitialData struct {
	Code        string
	ContinueURL string
	AdHTML      template.HTML
	Seconds     int
}

var interstitialTmpl = template.Must(template.New("interstitial").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>Redirecting...</title>
	<style>
		body {
			font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
			display: flex; align-items: center; justify-content: center;
			min-height: 100vh; margin: 0; background-color: #f0f2f5;
		}
		.container {
			text-align: center; background: white; padding: 40px;
			border-radius: 8px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);
		}
		.ad-slot {
			margin: 20px 0; min-height: 90px; min-width: 300px;
			border: 1px dashed #ccc;
			display: flex; align-items: center; justify-content: center;
		}
		.timer { font-size: 24px; margin: 20px 0; }
		#progressBarContainer {
			width: 100%; background-color: #e0e0e0;
			border-radius: 4px; overflow: hidden;
		}
		#progressBar {
			width: 0%; height: 10px; background-color: #4caf50;
			transition: width 1s linear;
		}
		#skipBtn {
			padding: 10px 20px; font-size: 16px; cursor: pointer;
			border: none; border-radius: 4px;
			background-color: #cccccc; color: #666; margin-top: 20px;
		}
		#skipBtn:not(:disabled) { background-color: #007bff; color: white; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Please wait...</h1>
		<p>Short link <strong>/{{.Code}}</strong> will open shortly.</p>
		<div class="ad-slot">
			{{if .AdHTML}}{{.AdHTML}}{{else}}Ad content goes here.{{end}}
		</div>
		<div id="progressBarContainer"><div id="progressBar"></div></div>
		<div class="timer" id="countdown">{{.Seconds}}</div>
		<button id="skipBtn" disabled>Skip Ad</button>
	</div>

	<script>
		(function() {
			const total = {{.Seconds}};
			const continueUrl = {{.ContinueURL}};
			const countdownEl = document.getElementById('countdown');
			const skipBtn = document.getElementById('skipBtn');
			const progressBar = document.getElementById('progressBar');
			let timeLeft = total;
			let navigated = false;

			function go() {
				if (navigated) return;
				navigated = true;
				window.location.href = continueUrl;
			}

			const interval = setInterval(() => {
				timeLeft--;
				countdownEl.textContent = timeLeft;
				progressBar.style.width = ((total - timeLeft) / total) * 100 + '%';
				if (timeLeft <= 0) {
					clearInterval(interval);
					go();
				}
			}, 1000);

			setTimeout(() => { skipBtn.disabled = false; }, 5000);
			skipBtn.addEventListener('click', go);
		})();
	</script>
</body>
</html>
`))

// RenderInterstitial expands the interstitial template.
func RenderInterstitial(data InterstitialData) (string, error) {
	if data.Seconds <= 0 {
		data.Seconds = 15
	}
	var buf bytes.Buffer
	if err := interstitialTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
